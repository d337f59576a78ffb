package region

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/turtacn/urban-dds/pkg/errors"
)

const (
	exactMatchScore   = 200
	partialMatchScore = 100
)

type tokenized struct {
	idx          int
	nameToken    string
	addressToken string
	codeToken    string
}

// Registry is an immutable, indexed table of region records.  It is safe
// for concurrent use.
type Registry struct {
	regions   []Region
	tokens    []tokenized
	aliasKeys []string
	aliases   map[string]int
}

// NewRegistry indexes records and aliases.  Record codes must be unique after
// folding; an alias naming an unknown record id is an error.  When two
// aliases fold to the same token the later one wins and keeps the earlier
// one's position in the containment scan.
func NewRegistry(records []Region, aliases []Alias) (*Registry, error) {
	r := &Registry{
		regions: make([]Region, len(records)),
		tokens:  make([]tokenized, len(records)),
		aliases: make(map[string]int, len(aliases)),
	}
	copy(r.regions, records)

	byID := make(map[string]int, len(records))
	seenCodes := make(map[string]string, len(records))
	for i, rec := range r.regions {
		code := CodeToken(rec.Code)
		if code == "" {
			return nil, errors.Newf(errors.ErrCodeValidation, "region %q has an empty code", rec.ID)
		}
		if other, dup := seenCodes[code]; dup {
			return nil, errors.Newf(errors.ErrCodeConflict, "region code %q shared by %q and %q", rec.Code, other, rec.ID)
		}
		seenCodes[code] = rec.ID
		byID[rec.ID] = i
		r.tokens[i] = tokenized{
			idx:          i,
			nameToken:    SearchToken(rec.Name),
			addressToken: SearchToken(rec.AddressHint),
			codeToken:    code,
		}
	}

	for _, a := range aliases {
		idx, ok := byID[a.RegionID]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeValidation, "alias %q references unknown region %q", a.Text, a.RegionID)
		}
		token := SearchToken(a.Text)
		if token == "" {
			continue
		}
		if _, exists := r.aliases[token]; !exists {
			r.aliasKeys = append(r.aliasKeys, token)
		}
		r.aliases[token] = idx
	}

	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the registry built from the embedded seed data.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		records, aliases := SeedRecords()
		reg, err := NewRegistry(records, aliases)
		if err != nil {
			panic(fmt.Sprintf("region: invalid seed data: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// All returns every record in registration order.
func (r *Registry) All() []Region {
	out := make([]Region, len(r.regions))
	copy(out, r.regions)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int { return len(r.regions) }

func (r *Registry) record(i int) *Region {
	rec := r.regions[i]
	if rec.BuildingLookup != nil {
		lookup := *rec.BuildingLookup
		rec.BuildingLookup = &lookup
	}
	return &rec
}

// ResolveByCode is an exact lookup on the folded code.
func (r *Registry) ResolveByCode(code string) (*Region, error) {
	token := CodeToken(code)
	if token != "" {
		for _, t := range r.tokens {
			if t.codeToken == token {
				return r.record(t.idx), nil
			}
		}
	}
	return nil, errors.Newf(errors.ErrCodeRegionNotFound, "no region with code %q", code)
}

// ResolveByID is an exact lookup on the folded id.
func (r *Registry) ResolveByID(id string) (*Region, error) {
	token := CodeToken(id)
	if token != "" {
		for i, rec := range r.regions {
			if CodeToken(rec.ID) == token {
				return r.record(i), nil
			}
		}
	}
	return nil, errors.Newf(errors.ErrCodeRegionNotFound, "no region with id %q", id)
}

type candidate struct {
	idx   int
	score int
}

// pickBest orders by score, then level rank, then name length, all
// descending; registration order breaks remaining ties.
func (r *Registry) pickBest(cands []candidate) (int, bool) {
	if len(cands) == 0 {
		return 0, false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.score != b.score {
			return a.score > b.score
		}
		ra, rb := r.regions[a.idx].Level.Rank(), r.regions[b.idx].Level.Rank()
		if ra != rb {
			return ra > rb
		}
		return utf8.RuneCountInString(r.regions[a.idx].Name) > utf8.RuneCountInString(r.regions[b.idx].Name)
	})
	return cands[0].idx, true
}

// ResolveByAddress maps free-text input to the best matching record.  The
// stages are: exact alias hit, exact name/hint/code match, scored partial
// match, and finally alias containment.
func (r *Registry) ResolveByAddress(address string) (*Region, error) {
	token := SearchToken(address)
	if token == "" {
		return nil, errors.Newf(errors.ErrCodeRegionNotFound, "No region found for address: %s", address)
	}

	if idx, ok := r.aliases[token]; ok {
		return r.record(idx), nil
	}

	var exact []candidate
	for _, t := range r.tokens {
		if t.nameToken == token || t.addressToken == token || t.codeToken == token {
			exact = append(exact, candidate{idx: t.idx, score: exactMatchScore})
		}
	}
	if idx, ok := r.pickBest(exact); ok {
		return r.record(idx), nil
	}

	tokenLen := utf8.RuneCountInString(token)
	lengthBonus := tokenLen
	if lengthBonus > 10 {
		lengthBonus = 10
	}

	var partial []candidate
	for _, t := range r.tokens {
		contained := strings.Contains(t.nameToken, token) || strings.Contains(t.addressToken, token)
		contains := strings.Contains(token, t.nameToken) || strings.Contains(token, t.addressToken)
		if !contained && !contains && !strings.Contains(t.codeToken, token) {
			continue
		}
		score := partialMatchScore
		if contained {
			score += 20
		}
		if contains {
			score += 10
		}
		partial = append(partial, candidate{idx: t.idx, score: score + lengthBonus})
	}
	if idx, ok := r.pickBest(partial); ok {
		return r.record(idx), nil
	}

	for _, key := range r.aliasKeys {
		if strings.Contains(token, key) {
			return r.record(r.aliases[key]), nil
		}
	}

	return nil, errors.Newf(errors.ErrCodeRegionNotFound, "No region found for address: %s", address)
}

//Personal.AI order the ending
