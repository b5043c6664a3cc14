package matching

import (
	"sort"
	"strings"

	"match-workers/internal/models"
)

// Registry is an immutable index over the active domains of one registry snapshot.
// A nil *Registry behaves as an empty registry.
type Registry struct {
	version      string
	keys         []string
	domains      map[string]models.TechDomain
	primary      map[string]map[string]struct{}
	secondary    map[string]map[string]struct{}
	keywords     map[string][]string
	owners       map[string][]string
	transferable map[string]map[string]struct{}
	incompatible map[string]map[string]struct{}
}

func domainKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// NewRegistry indexes the active domains of a snapshot. Inactive domains are ignored.
func NewRegistry(snapshot models.DomainRegistrySnapshot) *Registry {
	r := &Registry{
		version:      snapshot.Version,
		domains:      make(map[string]models.TechDomain),
		primary:      make(map[string]map[string]struct{}),
		secondary:    make(map[string]map[string]struct{}),
		keywords:     make(map[string][]string),
		owners:       make(map[string][]string),
		transferable: make(map[string]map[string]struct{}),
		incompatible: make(map[string]map[string]struct{}),
	}

	for _, d := range snapshot.Domains {
		key := domainKey(d.Key)
		if !d.Active || key == "" {
			continue
		}
		if _, dup := r.domains[key]; dup {
			continue
		}
		d.Key = key
		r.domains[key] = d
		r.keys = append(r.keys, key)

		r.primary[key] = toSet(normalizeSkills(d.PrimarySkills))
		r.secondary[key] = toSet(normalizeSkills(d.SecondarySkills))
		for _, kw := range d.TitleKeywords {
			if n := strings.Join(strings.Fields(strings.ToLower(kw)), " "); n != "" {
				r.keywords[key] = append(r.keywords[key], n)
			}
		}

		r.transferable[key] = make(map[string]struct{})
		for _, t := range d.TransferableTo {
			r.transferable[key][domainKey(t)] = struct{}{}
		}
	}
	sort.Strings(r.keys)

	for _, key := range r.keys {
		for _, other := range r.domains[key].IncompatibleWith {
			o := domainKey(other)
			r.markIncompatible(key, o)
			r.markIncompatible(o, key)
		}
	}

	owned := make(map[string]map[string]struct{})
	add := func(skill, key string) {
		if owned[skill] == nil {
			owned[skill] = make(map[string]struct{})
		}
		owned[skill][key] = struct{}{}
	}
	for _, key := range r.keys {
		for s := range r.primary[key] {
			add(s, key)
		}
		for s := range r.secondary[key] {
			add(s, key)
		}
		for _, kw := range r.keywords[key] {
			add(NormalizeSkill(kw), key)
		}
	}
	for skill, keys := range owned {
		list := make([]string, 0, len(keys))
		for k := range keys {
			list = append(list, k)
		}
		sort.Strings(list)
		r.owners[skill] = list
	}

	return r
}

func (r *Registry) markIncompatible(a, b string) {
	if r.incompatible[a] == nil {
		r.incompatible[a] = make(map[string]struct{})
	}
	r.incompatible[a][b] = struct{}{}
}

func (r *Registry) Version() string {
	if r == nil {
		return ""
	}
	return r.version
}

// Len returns the number of active domains.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the active domain keys in ascending order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

func (r *Registry) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.domains[domainKey(key)]
	return ok
}

func (r *Registry) Domain(key string) (models.TechDomain, bool) {
	if r == nil {
		return models.TechDomain{}, false
	}
	d, ok := r.domains[domainKey(key)]
	return d, ok
}

// OwnersOf returns the domains whose primary, secondary or title-keyword vocabulary contains the skill.
func (r *Registry) OwnersOf(normalizedSkill string) []string {
	if r == nil {
		return nil
	}
	return r.owners[normalizedSkill]
}

// Incompatible is symmetric regardless of how the rows store it.
func (r *Registry) Incompatible(a, b string) bool {
	if r == nil {
		return false
	}
	_, ok := r.incompatible[domainKey(a)][domainKey(b)]
	return ok
}

// TransferableTo reports whether from lists to in its transferable_to.
func (r *Registry) TransferableTo(from, to string) bool {
	if r == nil {
		return false
	}
	_, ok := r.transferable[domainKey(from)][domainKey(to)]
	return ok
}

func (r *Registry) transferTargets(key string) []string {
	if r == nil {
		return nil
	}
	targets := make([]string, 0, len(r.transferable[key]))
	for t := range r.transferable[key] {
		if _, active := r.domains[t]; active {
			targets = append(targets, t)
		}
	}
	sort.Strings(targets)
	return targets
}

// skillsByDomain groups normalized skills under every domain that owns them.
func (r *Registry) skillsByDomain(skills []string) map[string][]string {
	out := make(map[string][]string)
	for _, s := range skills {
		for _, d := range r.OwnersOf(s) {
			out[d] = append(out[d], s)
		}
	}
	return out
}

type domainStatus int

const (
	domainUnresolved domainStatus = iota
	domainResolved
	domainInvalidReference
)

type domainResolution struct {
	Key       string
	Status    domainStatus
	Reference string
}

const (
	titleKeywordPoints = 5
	primarySkillPoints = 3
	secondaryPoints    = 1
)

// dominantDomain resolves a profile's domain from an explicit key or by vocabulary scoring.
// Ties prefer the higher domain weight, then the smaller key.
func (r *Registry) dominantDomain(explicit, title string, skills []string) domainResolution {
	if ref := strings.TrimSpace(explicit); ref != "" {
		if r.Has(ref) {
			return domainResolution{Key: domainKey(ref), Status: domainResolved, Reference: ref}
		}
		return domainResolution{Status: domainInvalidReference, Reference: ref}
	}
	if r.Len() == 0 {
		return domainResolution{Status: domainUnresolved}
	}

	tokens := titleTokens(title)
	best, bestScore := "", 0
	for _, key := range r.keys {
		score := 0
		for _, kw := range r.keywords[key] {
			if containsKeyword(tokens, kw) {
				score += titleKeywordPoints
			}
		}
		for _, s := range skills {
			if _, ok := r.primary[key][s]; ok {
				score += primarySkillPoints
			} else if _, ok := r.secondary[key][s]; ok {
				score += secondaryPoints
			}
		}
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && r.domains[key].Weight > r.domains[best].Weight) {
			best, bestScore = key, score
		}
	}

	if best == "" {
		return domainResolution{Status: domainUnresolved}
	}
	return domainResolution{Key: best, Status: domainResolved}
}
