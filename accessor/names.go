package accessor

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/signadot/go-getters/directive"
	"github.com/signadot/go-getters/record"
)

// commonInitialisms are upper-cased as a whole when they start an
// exported name, so that a field url yields URL rather than Url.
var commonInitialisms = map[string]bool{
	"ACL": true, "API": true, "ASCII": true, "CPU": true, "CSS": true,
	"DNS": true, "EOF": true, "GUID": true, "HTML": true, "HTTP": true,
	"HTTPS": true, "ID": true, "IP": true, "JSON": true, "QPS": true,
	"RAM": true, "RPC": true, "SLA": true, "SMTP": true, "SQL": true,
	"SSH": true, "TCP": true, "TLS": true, "TTL": true, "UDP": true,
	"UI": true, "UID": true, "UUID": true, "URI": true, "URL": true,
	"UTF8": true, "VM": true, "XML": true, "XMPP": true, "XSRF": true,
	"XSS": true,
}

// applyVisibility adjusts the case of name so that it has visibility
// vis. Names which already have the requested visibility are returned
// unchanged.
func applyVisibility(name string, vis directive.Visibility) string {
	if vis == directive.Public {
		return exportName(name)
	}
	return unexportName(name)
}

func exportName(name string) string {
	if name == "" || token.IsExported(name) {
		return name
	}
	end := strings.IndexFunc(name, unicode.IsUpper)
	if end < 0 {
		end = len(name)
	}
	if word := strings.ToUpper(name[:end]); commonInitialisms[word] {
		return word + name[end:]
	}
	// ids -> IDs, urlsByHost -> URLsByHost
	if word := name[:end]; strings.HasSuffix(word, "s") && commonInitialisms[strings.ToUpper(word[:len(word)-1])] {
		return strings.ToUpper(word[:len(word)-1]) + name[end-1:]
	}
	r, n := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[n:]
}

func unexportName(name string) string {
	if name == "" || !token.IsExported(name) {
		return name
	}
	rs := []rune(name)
	n := 0
	for n < len(rs) && unicode.IsUpper(rs[n]) {
		n++
	}
	switch {
	case n == len(rs):
		// URL -> url
	case n > 1 && pluralInitialism(rs[:n], rs[n:]):
		// URLs -> urls, IDsByName -> idsByName
	case n > 1:
		// URLPath -> urlPath
		n--
	default:
		n = 1
	}
	for i := 0; i < n; i++ {
		rs[i] = unicode.ToLower(rs[i])
	}
	return string(rs)
}

// pluralInitialism reports whether upper is a common initialism which
// rest pluralizes with a lower case s ending the word.
func pluralInitialism(upper, rest []rune) bool {
	if !commonInitialisms[string(upper)] || len(rest) == 0 || rest[0] != 's' {
		return false
	}
	return len(rest) == 1 || !unicode.IsLower(rest[1])
}

// receiverName picks the receiver identifier of the accessors of a
// record, avoiding names the accessor bodies or signatures refer to.
func receiverName(preferred, typeName string, imports map[string]string, typeParams []string) string {
	taken := map[string]bool{"_": true, "string": true, "nil": true, "true": true, "false": true}
	for name, path := range imports {
		if strings.HasPrefix(name, ".") {
			// Dot imported names are qualified in generated code.
			name = record.GuessPackageName(path)
		}
		taken[name] = true
	}
	for _, name := range typeParams {
		taken[name] = true
	}
	var initial string
	if r, _ := utf8.DecodeRuneInString(typeName); r != utf8.RuneError {
		initial = string(unicode.ToLower(r))
	}
	for _, c := range []string{preferred, initial, "r", "rcv", "recv"} {
		if c != "" && token.IsIdentifier(c) && !taken[c] {
			return c
		}
	}
	for i := 0; ; i++ {
		c := "r" + strings.Repeat("_", i+1)
		if !taken[c] {
			return c
		}
	}
}
