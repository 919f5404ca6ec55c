package sqlschema

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// rules holds the default pluralization ruleset used for deriving entity
// names from table names.
var rules = ruleset()

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ACME", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID",
		"HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM",
		"RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "TCP", "TLS", "TTL",
		"UDP", "UI", "UID", "UUID", "URI", "URL", "UTF8", "VM", "XML",
		"XSRF", "XSS",
	} {
		r.AddAcronym(w)
	}
	return r
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// acronyms are words that keep their upper-case spelling in derived names.
var acronyms = func() map[string]string {
	m := make(map[string]string)
	for _, w := range []string{
		"ACL", "API", "CPU", "DNS", "GUID", "HTML", "HTTP", "ID", "IP",
		"JSON", "SQL", "SSH", "TCP", "TLS", "UDP", "UI", "UID", "UUID",
		"URI", "URL", "XML",
	} {
		m[strings.ToLower(w)] = w
	}
	return m
}()

// EntityName derives the entity (type) name for a table: the table name is
// split into words, the trailing word is singularized, and the result is
// pascal-cased. For example, "user_accounts" => "UserAccount".
func EntityName(table string) string {
	return entityName(rules, table)
}

// entityName derives the entity name using the given ruleset.
func entityName(r *inflect.Ruleset, table string) string {
	words := splitWords(table)
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = r.Singularize(words[len(words)-1])
	return pascalWords(words)
}

// TableName is the inverse of EntityName: it derives the conventional table
// name for an entity, i.e. the snake-cased plural form.
// For example, "UserAccount" => "user_accounts".
func TableName(entity string) string {
	return snake(rules.Pluralize(entity))
}

// normalizeEntity returns the case-insensitive, pluralization-normalized
// collision key for a table name. Two tables whose keys match resolve to
// the same derived entity ("users" and "user" both map to "user").
func normalizeEntity(r *inflect.Ruleset, table string) string {
	return strings.ToLower(entityName(r, table))
}

// splitWords splits snake_case, kebab-case and space-separated identifiers
// into their lower-cased words.
func splitWords(s string) []string {
	split := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	words := make([]string, 0, len(split))
	for _, w := range split {
		words = append(words, strings.ToLower(w))
	}
	return words
}

// pascalWords joins lower-cased words into a PascalCase identifier,
// preserving well-known acronyms.
func pascalWords(words []string) string {
	var b strings.Builder
	for _, w := range words {
		if a, ok := acronyms[w]; ok {
			b.WriteString(a)
			continue
		}
		b.WriteString(titleCaser.String(w))
	}
	return b.String()
}

// snake converts an identifier to snake_case.
func snake(s string) string {
	var (
		b  strings.Builder
		rs = []rune(s)
	)
	for i, r := range rs {
		switch {
		case unicode.IsUpper(r):
			// Put a underscore before an upper-case rune that follows a
			// lower-case one ("userID" => "user_id"), or that starts a new
			// word after an acronym ("HTTPServer" => "http_server").
			if i > 0 && (unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1]) ||
				(i+1 < len(rs) && unicode.IsLower(rs[i+1]) && !unicode.IsLower(rs[i-1]) && rs[i-1] != '_')) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == ' ':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
