package regions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	TypeProvinsi  = "provinsi"
	TypeKabupaten = "kabupaten"
	TypeKota      = "kota"
	TypeKecamatan = "kecamatan"
	TypeKelurahan = "kelurahan"
	TypeDesa      = "desa"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	scoreExact     = 100
	scorePrefix    = 50
	scoreSubstring = 30
	scoreFuzzy     = 10
	scoreCode      = 40

	minFuzzyRunes = 2
)

var typeWeights = map[string]int{
	TypeProvinsi:  20,
	TypeKabupaten: 15,
	TypeKota:      15,
	TypeKecamatan: 10,
	TypeKelurahan: 5,
	TypeDesa:      5,
}

//go:embed regions.json
var embeddedDataset []byte

type Region struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	ParentCode string `json:"parent_code,omitempty"`
}

type Result struct {
	Region
	// Path lists the parent names, nearest first.
	Path  []string `json:"path,omitempty"`
	Score int      `json:"score"`
}

type entry struct {
	region Region
	path   []string
	name   string // normalised name
	bare   string // name without the administrative prefix
	index  string // name, type and parent names
	code   string
	weight int
}

// Index is an immutable search index, safe for concurrent use.
type Index struct {
	entries []entry
}

// Load reads the dataset at path, or the embedded dataset when path is empty.
func Load(path string) (*Index, error) {
	data := embeddedDataset
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read regions dataset: %w", err)
		}
		data = b
	}

	var list []Region
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse regions dataset: %w", err)
	}
	return NewIndex(list), nil
}

func NewIndex(list []Region) *Index {
	byCode := make(map[string]Region, len(list))
	for _, r := range list {
		byCode[r.Code] = r
	}

	entries := make([]entry, 0, len(list))
	for _, r := range list {
		var path []string
		seen := map[string]bool{r.Code: true}
		for p, ok := byCode[r.ParentCode]; ok && !seen[p.Code]; p, ok = byCode[p.ParentCode] {
			seen[p.Code] = true
			path = append(path, p.Name)
		}

		name := Normalize(r.Name)
		typ := strings.ToLower(r.Type)
		parts := append([]string{name, typ}, path...)
		entries = append(entries, entry{
			region: r,
			path:   path,
			name:   name,
			bare:   stripPrefix(name),
			index:  Normalize(strings.Join(parts, " ")),
			code:   strings.ToLower(r.Code),
			weight: typeWeights[typ],
		})
	}
	return &Index{entries: entries}
}

func (ix *Index) Len() int { return len(ix.entries) }

// Search ranks regions against query. An empty query yields no results.
func (ix *Index) Search(query string, limit int) []Result {
	q := Normalize(query)
	if q == "" {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	short := utf8.RuneCountInString(q) < minFuzzyRunes

	results := make([]Result, 0, limit)
	for i := range ix.entries {
		e := &ix.entries[i]
		score := e.score(q, short)
		if score == 0 {
			continue
		}
		results = append(results, Result{Region: e.region, Path: e.path, Score: score + e.weight})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if len(results[i].Name) != len(results[j].Name) {
			return len(results[i].Name) < len(results[j].Name)
		}
		return results[i].Code < results[j].Code
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// score returns the match score without the type weight; zero means no match.
func (e *entry) score(q string, short bool) int {
	score := 0
	if e.name == q || e.bare == q {
		score += scoreExact
	}
	if strings.HasPrefix(e.name, q) || strings.HasPrefix(e.bare, q) {
		score += scorePrefix
	}
	if strings.Contains(e.code, q) {
		score += scoreCode
	}
	if short {
		return score
	}
	if strings.Contains(e.index, q) {
		score += scoreSubstring
	}
	if isSubsequence(q, e.index) {
		score += scoreFuzzy
	}
	return score
}

var adminPrefixes = []string{"kota administrasi ", "kabupaten administrasi ", "kota ", "kabupaten "}

func stripPrefix(name string) string {
	for _, p := range adminPrefixes {
		if strings.HasPrefix(name, p) {
			return strings.TrimPrefix(name, p)
		}
	}
	return name
}
