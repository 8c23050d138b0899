// Package accessor plans the read-only accessor methods of a struct.
//
// For every named field, Generate parses and merges the field's getter
// directives, classifies the field type and combines both into a Plan:
// the accessor name, its visibility, its result types and its body.
// Plans are turned into source by package emit.
//
// Given
//
//	//getters:generate
//	type NewsFeed struct {
//		name string
//		url  string
//		//getter:name=category
//		cat sql.NullString
//	}
//
// the plans describe
//
//	func (n *NewsFeed) Name() string
//	func (n *NewsFeed) URL() string
//	func (n *NewsFeed) Category() (string, bool)
//
// # Related Packages
//
//   - github.com/signadot/go-getters/directive - field directives
//   - github.com/signadot/go-getters/classify - accessor shapes
//   - github.com/signadot/go-getters/emit - source rendering
package accessor
