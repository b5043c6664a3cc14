package matching

import (
	"sort"
	"strings"
	"unicode"
)

// skillAliases maps common spellings to one canonical skill name.
var skillAliases = map[string]string{
	"golang":                "go",
	"k8s":                   "kubernetes",
	"js":                    "javascript",
	"ecmascript":            "javascript",
	"ts":                    "typescript",
	"node.js":               "node",
	"nodejs":                "node",
	"react.js":              "react",
	"reactjs":               "react",
	"vue.js":                "vue",
	"vuejs":                 "vue",
	"postgres":              "postgresql",
	"psql":                  "postgresql",
	"mongo":                 "mongodb",
	"amazon web services":   "aws",
	"gcp":                   "google cloud",
	"google cloud platform": "google cloud",
	"c sharp":               "c#",
	"csharp":                "c#",
	"cpp":                   "c++",
	"py":                    "python",
	"spring boot":           "spring",
	"springboot":            "spring",
	"tf":                    "terraform",
	"ml":                    "machine learning",
	"rtos":                  "real-time operating systems",
	"ui/ux":                 "ux design",
	"ux":                    "ux design",
}

// NormalizeSkill lowercases, trims, collapses inner whitespace and resolves aliases.
func NormalizeSkill(raw string) string {
	s := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if canonical, ok := skillAliases[s]; ok {
		return canonical
	}
	return s
}

// normalizeSkills returns the sorted, de-duplicated canonical form of a skill list.
func normalizeSkills(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n := NormalizeSkill(r)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, i := range items {
		set[i] = struct{}{}
	}
	return set
}

// titleTokens splits a job title into lowercase words, keeping characters used in tech names.
func titleTokens(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}

func containsKeyword(tokens, keyword string) bool {
	kw := strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
	if tokens == "" || kw == "" {
		return false
	}
	return strings.Contains(tokens, " "+kw+" ")
}
