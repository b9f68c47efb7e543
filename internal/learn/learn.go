package learn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/paths"
	"github.com/thoreinstein/mcpsync/pkg/fileutil"
)

// maxHistory bounds the raw outcome history. Patterns keep running totals
// and are never discarded, only decayed by recency at read time.
const maxHistory = 100

// quickDeployMinFrequency is the usage floor for one-keystroke deploys.
const quickDeployMinFrequency = 3

// Pattern is a learned association between a server and a target set.
type Pattern struct {
	Server string `json:"server"`

	// Targets is the sorted target-set the server was deployed to.
	Targets []string `json:"targets"`

	// Frequency counts how many times this exact combination was used.
	Frequency int `json:"frequency"`

	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	LastUsedAt time.Time `json:"last_used_at"`
}

// SuccessRate returns successes over total recorded outcomes.
func (p *Pattern) SuccessRate() float64 {
	total := p.SuccessCount + p.FailureCount
	if total == 0 {
		return 0
	}
	return float64(p.SuccessCount) / float64(total)
}

// Score ranks the pattern for suggestion ordering at time now:
// frequency × success rate × recency factor, where the recency factor
// decays linearly over 30 days and is floored at 0.1 so long-unused
// patterns never drop out abruptly.
func (p *Pattern) Score(now time.Time) float64 {
	days := now.Sub(p.LastUsedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	recency := 1 - days/30
	if recency < 0.1 {
		recency = 0.1
	}

	successRate := float64(p.SuccessCount) / float64(max(1, p.SuccessCount+p.FailureCount))
	return float64(p.Frequency) * successRate * recency
}

// Outcome is one recorded deployment result.
type Outcome struct {
	Server    string    `json:"server"`
	Targets   []string  `json:"targets"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// document is the on-disk layout of the preferences store.
type document struct {
	Version            int                 `json:"version"`
	LearningEnabled    bool                `json:"learning_enabled"`
	AutoSuggest        bool                `json:"auto_suggest"`
	QuickDeployEnabled bool                `json:"quick_deploy_enabled"`
	Patterns           map[string]*Pattern `json:"deployment_patterns"`
	History            []Outcome           `json:"deployment_history"`
}

// Learner records deployment outcomes and ranks target-set candidates for
// suggestions. The store is loaded at construction and flushed on every
// write; a missing file means an empty pattern set, never an error.
//
// The learner is deliberately forgiving: the engine treats every learner
// error as non-fatal.
type Learner struct {
	path string
	doc  *document
	now  func() time.Time

	// Session overrides from the application config; nil follows the
	// stored document flags.
	autoSuggest *bool
	quickDeploy *bool
}

// Option configures a Learner.
type Option func(*Learner)

// WithPath overrides the preferences file location.
func WithPath(path string) Option {
	return func(l *Learner) {
		l.path = path
	}
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(l *Learner) {
		l.now = now
	}
}

// WithAutoSuggest overrides the store's auto_suggest flag for this
// session without rewriting the document.
func WithAutoSuggest(enabled bool) Option {
	return func(l *Learner) {
		l.autoSuggest = &enabled
	}
}

// WithQuickDeploy overrides the store's quick_deploy_enabled flag for
// this session without rewriting the document.
func WithQuickDeploy(enabled bool) Option {
	return func(l *Learner) {
		l.quickDeploy = &enabled
	}
}

// Open loads the preferences store.
func Open(opts ...Option) (*Learner, error) {
	l := &Learner{
		path: paths.PreferencesFile(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.doc = defaultDocument()
			return l, nil
		}
		return nil, errors.Wrap(err, "reading preferences")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing preferences %s", l.path)
	}
	if doc.Patterns == nil {
		doc.Patterns = make(map[string]*Pattern)
	}
	l.doc = &doc
	return l, nil
}

func defaultDocument() *document {
	return &document{
		Version:            1,
		LearningEnabled:    true,
		AutoSuggest:        true,
		QuickDeployEnabled: true,
		Patterns:           make(map[string]*Pattern),
	}
}

// Enabled reports whether outcome recording is enabled.
func (l *Learner) Enabled() bool {
	return l.doc.LearningEnabled
}

func (l *Learner) autoSuggestEnabled() bool {
	if l.autoSuggest != nil {
		return *l.autoSuggest
	}
	return l.doc.AutoSuggest
}

func (l *Learner) quickDeployEnabled() bool {
	if l.quickDeploy != nil {
		return *l.quickDeploy
	}
	return l.doc.QuickDeployEnabled
}

// SetEnabled toggles learning and flushes.
func (l *Learner) SetEnabled(enabled bool) error {
	l.doc.LearningEnabled = enabled
	return l.flush()
}

// Record registers a deployment outcome for a server and target set,
// updating the matching pattern's running totals and appending to the
// bounded history. A no-op when learning is disabled.
func (l *Learner) Record(serverName string, targetSet []string, success bool) error {
	if !l.doc.LearningEnabled || serverName == "" || len(targetSet) == 0 {
		return nil
	}

	targets := normalizeTargets(targetSet)
	now := l.now().UTC()

	l.doc.History = append(l.doc.History, Outcome{
		Server:    serverName,
		Targets:   targets,
		Success:   success,
		Timestamp: now,
	})
	if len(l.doc.History) > maxHistory {
		l.doc.History = l.doc.History[len(l.doc.History)-maxHistory:]
	}

	key := patternKey(serverName, targets)
	pat, ok := l.doc.Patterns[key]
	if !ok {
		pat = &Pattern{Server: serverName, Targets: targets}
		l.doc.Patterns[key] = pat
	}
	pat.Frequency++
	pat.LastUsedAt = now
	if success {
		pat.SuccessCount++
	} else {
		pat.FailureCount++
	}

	return l.flush()
}

// Suggest returns the server's learned target-sets ordered by descending
// score. Patterns whose recorded outcomes are mostly failures are left
// out, matching what a suggestion UI should offer.
func (l *Learner) Suggest(serverName string) []*Pattern {
	if !l.autoSuggestEnabled() {
		return nil
	}

	now := l.now()
	var out []*Pattern
	for _, pat := range l.doc.Patterns {
		if pat.Server != serverName {
			continue
		}
		if pat.SuccessRate() <= 0.5 && pat.FailureCount > 0 {
			continue
		}
		out = append(out, pat)
	}

	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Score(now), out[j].Score(now)
		if si != sj {
			return si > sj
		}
		return patternKey(out[i].Server, out[i].Targets) < patternKey(out[j].Server, out[j].Targets)
	})
	return out
}

// QuickDeployEligible reports whether the server has a pattern used often
// enough, and successfully enough, to deploy without asking. Returns the
// qualifying target set when eligible.
func (l *Learner) QuickDeployEligible(serverName string) ([]string, bool) {
	if !l.quickDeployEnabled() {
		return nil, false
	}

	for _, pat := range l.Suggest(serverName) {
		if pat.Frequency >= quickDeployMinFrequency && pat.SuccessRate() > 0.5 {
			return pat.Targets, true
		}
	}
	return nil, false
}

// Stats summarizes recorded usage.
type Stats struct {
	TotalDeployments int
	SuccessRate      float64
	PatternsLearned  int
	FavoriteTarget   string
}

// Stats computes usage statistics from the bounded history.
func (l *Learner) Stats() Stats {
	st := Stats{
		TotalDeployments: len(l.doc.History),
		PatternsLearned:  len(l.doc.Patterns),
	}
	if len(l.doc.History) == 0 {
		return st
	}

	successes := 0
	targetCounts := make(map[string]int)
	for _, o := range l.doc.History {
		if o.Success {
			successes++
		}
		for _, t := range o.Targets {
			targetCounts[t]++
		}
	}
	st.SuccessRate = float64(successes) / float64(len(l.doc.History))

	best := 0
	for t, n := range targetCounts {
		if n > best || (n == best && t < st.FavoriteTarget) {
			best = n
			st.FavoriteTarget = t
		}
	}
	return st
}

func (l *Learner) flush() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Wrap(err, "creating preferences directory")
	}
	return fileutil.AtomicWriteJSON(l.path, l.doc)
}

func normalizeTargets(targets []string) []string {
	out := append([]string(nil), targets...)
	sort.Strings(out)
	return out
}

func patternKey(serverName string, sortedTargets []string) string {
	return serverName + "::" + strings.Join(sortedTargets, ",")
}
