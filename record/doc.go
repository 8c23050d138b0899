// Package record extracts struct descriptions from Go source for
// accessor generation.
//
// A struct is selected when its type declaration carries the
// //getters:generate directive, or when it is named explicitly:
//
//	//getters:generate
//	type NewsFeed struct {
//		name string
//		url  string
//		//getter:name=category
//		cat sql.NullString
//	}
//
// Field annotations are collected verbatim; parsing them is left to
// package directive.
package record
