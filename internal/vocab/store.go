// Package vocab implements the Vocabulary Store: a read-only, mostly
// in-memory view over an enriched vocabulary graph, loaded once at process
// start and shared by every request-scoped component.
package vocab

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"lexicore/internal/apperr"
	"lexicore/internal/models"
)

// Bands are the fixed frequency buckets the survey and distractor service
// reason about.
var Bands = []int{1000, 2000, 3000, 4000, 5000, 6000, 7000, 8000}

// minStopWordRank is the stop-word cutoff: a sense is shown by the survey
// or MCQ only when its frequency_rank is above it.
const minStopWordRank = 50

// snapshotDoc mirrors the top-level shape of the vocabulary snapshot file.
type snapshotDoc struct {
	Version string                  `json:"version"`
	Senses  map[string]models.Sense `json:"senses"`
	Indices struct {
		ByBand map[string][]string `json:"byBand"`
		ByPos  map[string][]string `json:"byPos"`
	} `json:"indices"`
}

// GraphReader is the optional fallback data source for sense lookups that
// miss the preloaded snapshot. No implementation ships by default;
// Store.WithGraphFallback wires one into a Store that has already loaded.
type GraphReader interface {
	GetSense(senseID string) (*models.Sense, bool, error)
}

// Store is the immutable, process-lifetime vocabulary index. It is built
// once at the composition root and passed by pointer to every component
// that needs it — never held behind a package-level singleton.
type Store struct {
	senses map[string]models.Sense

	// lemmaIndex is rebuilt from sense_id prefixes on load; the snapshot's
	// own byWord index is never trusted (it may use surface forms).
	lemmaIndex map[string][]string

	// bandIndex[band] holds sense ids with minRank(band) <= rank <= band.
	bandIndex map[int][]string
	posIndex  map[string][]string

	graph GraphReader
}

// Load reads a snapshot JSON document from path and builds the in-memory
// lemma, band, and POS indices. A missing or unreadable snapshot always
// returns an ExternalUnavailable error: a graph fallback can only be
// attached to the returned Store via WithGraphFallback, so it plays no part
// in loading.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ExternalUnavailable, "read vocabulary snapshot", err)
	}

	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "parse vocabulary snapshot", err)
	}

	s := &Store{
		senses:     doc.Senses,
		lemmaIndex: make(map[string][]string, len(doc.Senses)),
		bandIndex:  make(map[int][]string),
		posIndex:   make(map[string][]string),
	}
	s.buildIndices()
	return s, nil
}

// NewFromSenses builds a Store directly from a set of senses, bypassing the
// snapshot file — used by fixture seeding and tests.
func NewFromSenses(senses map[string]models.Sense) *Store {
	s := &Store{
		senses:     senses,
		lemmaIndex: make(map[string][]string, len(senses)),
		bandIndex:  make(map[int][]string),
		posIndex:   make(map[string][]string),
	}
	s.buildIndices()
	return s
}

// WithGraphFallback attaches a fallback data source consulted when a sense
// is absent from the in-memory snapshot. Returns the same store for
// chaining at the composition root.
func (s *Store) WithGraphFallback(g GraphReader) *Store {
	s.graph = g
	return s
}

func (s *Store) buildIndices() {
	lemmaSet := make(map[string]map[string]struct{})
	for id, sense := range s.senses {
		lemma := sense.Lemma()
		if lemmaSet[lemma] == nil {
			lemmaSet[lemma] = make(map[string]struct{})
		}
		lemmaSet[lemma][id] = struct{}{}

		if sense.POS != "" {
			s.posIndex[sense.POS] = append(s.posIndex[sense.POS], id)
		}
	}
	for lemma, idSet := range lemmaSet {
		ids := make([]string, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		s.lemmaIndex[lemma] = ids
	}

	prevBand := 0
	for _, band := range Bands {
		minRank := minStopWordRank + 1
		if prevBand != 0 {
			minRank = prevBand + 1
		}
		for id, sense := range s.senses {
			if sense.FrequencyRank >= minRank && sense.FrequencyRank <= band {
				s.bandIndex[band] = append(s.bandIndex[band], id)
			}
		}
		sort.Strings(s.bandIndex[band])
		prevBand = band
	}
}

// minRankFor returns the minimum rank (exclusive lower bound already
// applied) admitted into band.
func minRankFor(band int) int {
	for i, b := range Bands {
		if b == band {
			if i == 0 {
				return minStopWordRank + 1
			}
			return Bands[i-1] + 1
		}
	}
	return minStopWordRank + 1
}

// GetSense returns the sense for id, falling back to the graph reader (if
// configured) when absent from the snapshot.
func (s *Store) GetSense(senseID string) (*models.Sense, bool) {
	if sense, ok := s.senses[senseID]; ok {
		cp := sense
		return &cp, true
	}
	if s.graph != nil {
		sense, ok, err := s.graph.GetSense(senseID)
		if err == nil && ok {
			return sense, true
		}
	}
	return nil, false
}

// SensesForLemma returns every sense under lemma, sorted by sense id.
func (s *Store) SensesForLemma(lemma string) []models.Sense {
	ids := s.lemmaIndex[lemma]
	out := make([]models.Sense, 0, len(ids))
	for _, id := range ids {
		if sense, ok := s.senses[id]; ok {
			out = append(out, sense)
		}
	}
	return out
}

// isVisible reports whether a sense may be surfaced to the survey or MCQ:
// it must clear the stop-word rank filter and carry a Chinese definition.
func isVisible(sense models.Sense) bool {
	return sense.FrequencyRank > minStopWordRank && strings.TrimSpace(sense.DefinitionZH) != ""
}

// RandomSensesInBand samples count distinct senses from band uniformly
// without replacement, skipping ids in exclude and optionally filtering by
// part of speech. May return fewer than count if supply runs out.
func (s *Store) RandomSensesInBand(rng *rand.Rand, band, count int, exclude map[string]bool, pos string) []models.Sense {
	candidates := s.bandIndex[band]
	pool := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if exclude != nil && exclude[id] {
			continue
		}
		sense, ok := s.senses[id]
		if !ok || !isVisible(sense) {
			continue
		}
		if pos != "" && sense.POS != pos {
			continue
		}
		pool = append(pool, id)
	}

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count < len(pool) {
		pool = pool[:count]
	}

	out := make([]models.Sense, 0, len(pool))
	for _, id := range pool {
		out = append(out, s.senses[id])
	}
	return out
}

// SensesByRankRange returns up to limit visible senses with
// minRank <= rank <= maxRank, optionally filtered by POS and excluding a set
// of headwords, sorted by rank ascending.
func (s *Store) SensesByRankRange(minRank, maxRank int, pos string, excludeWords map[string]bool, limit int) []models.Sense {
	var out []models.Sense
	for _, sense := range s.senses {
		if sense.FrequencyRank < minRank || sense.FrequencyRank > maxRank {
			continue
		}
		if !isVisible(sense) {
			continue
		}
		if pos != "" && sense.POS != pos {
			continue
		}
		if excludeWords != nil && excludeWords[sense.Lemma()] {
			continue
		}
		out = append(out, sense)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FrequencyRank < out[j].FrequencyRank })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Confused resolves the confused[] references of a sense to full records.
func (s *Store) Confused(senseID string) []models.ResolvedConfusion {
	sense, ok := s.GetSense(senseID)
	if !ok {
		return nil
	}
	out := make([]models.ResolvedConfusion, 0, len(sense.Connections.Confused))
	for _, edge := range sense.Connections.Confused {
		target, ok := s.GetSense(edge.SenseID)
		if !ok {
			continue
		}
		out = append(out, models.ResolvedConfusion{
			SenseID: target.ID,
			Word:    target.Word,
			Gloss:   target.DefinitionZH,
			POS:     target.POS,
			Rank:    target.FrequencyRank,
			Reason:  edge.Reason,
		})
	}
	return out
}

// Related resolves the related[] references of a sense to full records.
func (s *Store) Related(senseID string) []models.ResolvedRelation {
	return s.resolveRelationList(senseID, func(sense models.Sense) []string { return sense.Connections.Related })
}

// Opposite resolves the opposite[] references of a sense to full records.
func (s *Store) Opposite(senseID string) []models.ResolvedRelation {
	return s.resolveRelationList(senseID, func(sense models.Sense) []string { return sense.Connections.Opposite })
}

func (s *Store) resolveRelationList(senseID string, field func(models.Sense) []string) []models.ResolvedRelation {
	sense, ok := s.GetSense(senseID)
	if !ok {
		return nil
	}
	ids := field(*sense)
	out := make([]models.ResolvedRelation, 0, len(ids))
	for _, id := range ids {
		target, ok := s.GetSense(id)
		if !ok {
			continue
		}
		out = append(out, models.ResolvedRelation{
			SenseID: target.ID,
			Word:    target.Word,
			Gloss:   target.DefinitionZH,
			POS:     target.POS,
			Rank:    target.FrequencyRank,
		})
	}
	return out
}

// OtherSensesOfWord returns the sibling sense ids under senseID's lemma.
func (s *Store) OtherSensesOfWord(senseID string) []string {
	sense, ok := s.GetSense(senseID)
	if !ok {
		return nil
	}
	return sense.OtherSenses
}

// BandFor returns the smallest band such that rank <= band, matching the
// survey's band-attribution rule.
func BandFor(rank int) int {
	for _, b := range Bands {
		if rank <= b {
			return b
		}
	}
	return Bands[len(Bands)-1]
}

// String is a small debug helper.
func (s *Store) String() string {
	return fmt.Sprintf("vocab.Store{senses=%d, lemmas=%d}", len(s.senses), len(s.lemmaIndex))
}
