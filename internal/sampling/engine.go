// Package sampling implements classical survey sampling designs over
// in-memory tables: simple random, systematic, stratified and one- or
// two-stage cluster sampling.
//
// All randomness flows through the *rand.Rand given to the Engine, so a fixed
// seed reproduces a sample exactly. An Engine is not safe for concurrent use;
// build one per request.
package sampling

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
)

// Engine runs sampling requests against tables.
type Engine struct {
	rng *rand.Rand
}

// GroupCount reports, for a stratum or cluster involved in a sample, its size
// in the source table and how many rows were drawn from it.
type GroupCount struct {
	Key   string `yaml:"key" json:"key"`
	Size  int    `yaml:"size" json:"size"`
	Drawn int    `yaml:"drawn" json:"drawn"`
}

// Result is the outcome of one request.
type Result struct {
	Request Request
	Sample  *table.Table
	// Positions are the source row positions, in sample order.
	Positions []int
	// Groups lists strata (stratified) or selected clusters (cluster designs).
	Groups   []GroupCount
	Warnings []string
}

// New returns an engine drawing from rng. A nil rng is replaced by a source
// seeded from the runtime's entropy.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{rng: rng}
}

// NewSeeded returns an engine whose draws are fully determined by seed.
func NewSeeded(seed uint64) *Engine {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Run validates req against t and, if valid, draws the sample. The input
// table is never modified.
func (e *Engine) Run(t *table.Table, req Request) (*Result, error) {
	if err := Validate(t, req); err != nil {
		return nil, err
	}
	res := &Result{Request: req}
	var err error
	switch r := req.(type) {
	case Random:
		res.Positions = e.choose(t.Len(), min(r.SampleSize, t.Len()))
	case Systematic:
		res.Positions = systematicPositions(t.Len(), r.SampleSize)
	case Stratified:
		err = e.stratified(t, r, res)
	case Cluster1:
		err = e.cluster1(t, r, res)
	case Cluster2:
		err = e.cluster2(t, r, res)
	default:
		err = fmt.Errorf("unsupported request %T", req)
	}
	if err != nil {
		return nil, err
	}
	res.Sample = t.Take(res.Positions)
	return res, nil
}

// RandomSampling draws n distinct rows uniformly without replacement.
func (e *Engine) RandomSampling(t *table.Table, n int) (*table.Table, error) {
	return e.sample(t, Random{SampleSize: n})
}

// SystematicSampling takes rows at positions floor(i*N/n) for i = 0..n-1.
func (e *Engine) SystematicSampling(t *table.Table, n int) (*table.Table, error) {
	return e.sample(t, Systematic{SampleSize: n})
}

// StratifiedSampling draws floor(n/strata) rows with replacement from every
// stratum of column.
func (e *Engine) StratifiedSampling(t *table.Table, n int, column string) (*table.Table, error) {
	return e.sample(t, Stratified{SampleSize: n, StrataColumn: column})
}

// ClusterSampling1 returns every row of k clusters chosen without replacement.
func (e *Engine) ClusterSampling1(t *table.Table, column string, k int) (*table.Table, error) {
	return e.sample(t, Cluster1{ClusterColumn: column, ClusterCount: k})
}

// ClusterSampling2 chooses k clusters, then draws about n rows across them in
// proportion to their sizes.
func (e *Engine) ClusterSampling2(t *table.Table, column string, k, n int) (*table.Table, error) {
	return e.sample(t, Cluster2{ClusterColumn: column, ClusterCount: k, SampleSize: n})
}

func (e *Engine) sample(t *table.Table, req Request) (*table.Table, error) {
	res, err := e.Run(t, req)
	if err != nil {
		return nil, err
	}
	return res.Sample, nil
}

// choose returns k distinct integers from [0,n) in draw order using a partial
// Fisher-Yates shuffle.
func (e *Engine) choose(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + e.rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	out := make([]int, k)
	copy(out, idx[:k])
	return out
}

// systematicPositions truncates: each position is floored and anything past
// the last row is dropped. Integer arithmetic keeps floor(i*N/n) exact.
func systematicPositions(rows, n int) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		p := int(int64(i) * int64(rows) / int64(n))
		if p > rows-1 {
			break
		}
		out = append(out, p)
	}
	return out
}

func (e *Engine) stratified(t *table.Table, r Stratified, res *Result) error {
	strata, err := t.Groups(r.StrataColumn)
	if err != nil {
		return err
	}
	if len(strata) == 0 {
		return &InvalidParameterError{Field: FieldStrataColumn, Value: r.StrataColumn, Reason: "column has no strata"}
	}
	per := r.SampleSize / len(strata)
	if per == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"sample size %d is smaller than the %d strata of %q; the sample is empty", r.SampleSize, len(strata), r.StrataColumn))
	} else if short := r.SampleSize - per*len(strata); short > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d rows dropped so every stratum gets %d draws", short, per))
	}
	for _, s := range strata {
		for i := 0; i < per; i++ {
			res.Positions = append(res.Positions, s.Rows[e.rng.IntN(len(s.Rows))])
		}
		res.Groups = append(res.Groups, GroupCount{Key: s.Key, Size: len(s.Rows), Drawn: per})
	}
	return nil
}

// pickClusters chooses k clusters of column without replacement, in draw order.
func (e *Engine) pickClusters(t *table.Table, column string, k int) ([]table.Group, error) {
	clusters, err := t.Groups(column)
	if err != nil {
		return nil, err
	}
	if k < 1 || k > len(clusters) {
		return nil, outOfRange(FieldClusterCount, k, 1, len(clusters))
	}
	picked := make([]table.Group, k)
	for i, c := range e.choose(len(clusters), k) {
		picked[i] = clusters[c]
	}
	return picked, nil
}

func (e *Engine) cluster1(t *table.Table, r Cluster1, res *Result) error {
	picked, err := e.pickClusters(t, r.ClusterColumn, r.ClusterCount)
	if err != nil {
		return err
	}
	for _, c := range picked {
		res.Positions = append(res.Positions, c.Rows...)
		res.Groups = append(res.Groups, GroupCount{Key: c.Key, Size: len(c.Rows), Drawn: len(c.Rows)})
	}
	// whole clusters come back in table order
	sort.Ints(res.Positions)
	return nil
}

func (e *Engine) cluster2(t *table.Table, r Cluster2, res *Result) error {
	picked, err := e.pickClusters(t, r.ClusterColumn, r.ClusterCount)
	if err != nil {
		return err
	}
	total := 0
	for _, c := range picked {
		total += len(c.Rows)
	}
	if total == 0 {
		return errors.New("selected clusters are empty")
	}
	drawn := 0
	for _, c := range picked {
		share := int(int64(r.SampleSize) * int64(len(c.Rows)) / int64(total))
		if share > len(c.Rows) {
			share = len(c.Rows)
		}
		for _, j := range e.choose(len(c.Rows), share) {
			res.Positions = append(res.Positions, c.Rows[j])
		}
		res.Groups = append(res.Groups, GroupCount{Key: c.Key, Size: len(c.Rows), Drawn: share})
		drawn += share
	}
	if drawn < r.SampleSize {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"proportional allocation drew %d of %d requested rows", drawn, r.SampleSize))
	}
	return nil
}
