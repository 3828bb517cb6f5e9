package hatchval

// Concern names one validation concern. Each schema version's validator
// owns strategies only for the concerns that changed in that version.
type Concern string

const (
	ConcernSchema       Concern = "schema"
	ConcernDependencies Concern = "dependencies"
	ConcernEntryPoint   Concern = "entry_point"
	ConcernTools        Concern = "tools"
)

// Concerns returns the canonical concern order. Outcome error lists are
// ordered by concern then by strategy-internal order, so results are
// reproducible across runs.
func Concerns() []Concern {
	return []Concern{ConcernSchema, ConcernDependencies, ConcernEntryPoint, ConcernTools}
}

// ConcernResult is the verdict for a single concern.
type ConcernResult struct {
	Valid  bool
	Errors []string
}

// Outcome aggregates one validation call. OK is the logical AND across all
// concerns. Outcomes are created per call and never reused.
type Outcome struct {
	OK       bool
	Concerns map[Concern]ConcernResult
}

// NewOutcome returns an empty, passing outcome.
func NewOutcome() Outcome {
	return Outcome{OK: true, Concerns: make(map[Concern]ConcernResult, 4)}
}

// Set records the verdict for one concern and folds it into OK.
func (o *Outcome) Set(c Concern, valid bool, errs []string) {
	o.Concerns[c] = ConcernResult{Valid: valid, Errors: errs}
	o.OK = o.OK && valid
}

// AllErrors concatenates every concern's errors in canonical concern order.
func (o Outcome) AllErrors() []string {
	var all []string
	for _, c := range Concerns() {
		if res, ok := o.Concerns[c]; ok {
			all = append(all, res.Errors...)
		}
	}
	return all
}
