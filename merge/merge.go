package merge

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMerge = errors.New("merge failed")

// MergeError reports why two scripts could not be combined. The existing
// script is never modified when Merge returns one.
type MergeError struct {
	Reason string
	Err    error
}

func (e *MergeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("merge failed: %s: %v", e.Reason, e.Err)
	}
	return "merge failed: " + e.Reason
}

func (e *MergeError) Is(target error) bool {
	return target == ErrMerge
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// Policy decides which body wins when both scripts declare the same id.
type Policy string

const (
	KeepExisting   Policy = "keep-existing"
	PreferIncoming Policy = "prefer-incoming"
)

// ParsePolicy maps a configuration value to a Policy. An empty value is
// KeepExisting.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeepExisting:
		return KeepExisting, nil
	case PreferIncoming:
		return PreferIncoming, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", s)
	}
}

// Result is the outcome of Merge.
type Result struct {
	Text    string
	Records []Record
	// Merged is false when the existing script was empty and Text is the
	// incoming script unchanged.
	Merged   bool
	Added    []string
	Replaced []string
	// Skipped lists incoming ids that collided and lost to the existing body.
	Skipped []string
	// Dropped lists repeated ids removed from the existing script.
	Dropped []string
}

// IDs returns the ids of the merged records in order.
func (r *Result) IDs() []string {
	ids := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		ids = append(ids, rec.ID)
	}
	return ids
}

// Merge combines the test declarations of incoming into existing. The output
// keeps the existing preamble and teardown, lists the existing tests first
// and appends incoming tests with new ids. Collisions follow policy.
func Merge(existing, incoming string, policy Policy) (*Result, error) {
	if strings.TrimSpace(existing) == "" {
		records, _ := Extract(incoming)
		return &Result{Text: incoming, Records: records}, nil
	}
	if policy == "" {
		policy = KeepExisting
	}

	current, err := Extract(existing)
	if err != nil {
		return nil, &MergeError{Reason: "existing script is unreadable", Err: err}
	}
	if len(current) == 0 {
		return nil, &MergeError{Reason: "existing script has no test declarations"}
	}
	added, err := Extract(incoming)
	if err != nil {
		return nil, &MergeError{Reason: "incoming script is unreadable", Err: err}
	}

	res := &Result{Merged: true}
	index := make(map[string]int)
	var codes []string
	var order []string
	for _, rec := range current {
		if _, seen := index[rec.ID]; seen {
			res.Dropped = append(res.Dropped, rec.ID)
			continue
		}
		index[rec.ID] = len(codes)
		codes = append(codes, rec.Code)
		order = append(order, rec.ID)
	}
	for _, rec := range added {
		pos, seen := index[rec.ID]
		switch {
		case !seen:
			index[rec.ID] = len(codes)
			codes = append(codes, rec.Code)
			order = append(order, rec.ID)
			res.Added = append(res.Added, rec.ID)
		case policy == PreferIncoming:
			codes[pos] = rec.Code
			res.Replaced = append(res.Replaced, rec.ID)
		default:
			res.Skipped = append(res.Skipped, rec.ID)
		}
	}

	res.Text = render(existing, current, codes)

	records, err := Extract(res.Text)
	if err != nil {
		return nil, &MergeError{Reason: "merged script is unreadable", Err: err}
	}
	if !sameIDs(records, order) {
		return nil, &MergeError{Reason: fmt.Sprintf("merged script declares %d tests, expected %d in order", len(records), len(order))}
	}
	res.Records = records
	return res, nil
}

// render writes codes into the skeleton of existing: everything before the
// first test and after the last one is kept, and non-blank text found
// between existing tests follows the merged tests.
func render(existing string, current []Record, codes []string) string {
	first, last := current[0], current[len(current)-1]
	indent := lineIndent(existing, first.Start)
	sep := "\n\n" + indent

	var b strings.Builder
	b.WriteString(existing[:first.Start])
	b.WriteString(strings.Join(codes, sep))
	for i := 1; i < len(current); i++ {
		gap := strings.TrimSpace(existing[current[i-1].End:current[i].Start])
		if gap != "" {
			b.WriteString(sep)
			b.WriteString(gap)
		}
	}
	b.WriteString(existing[last.End:])
	return b.String()
}

// lineIndent returns the whitespace between the start of the line holding
// pos and pos.
func lineIndent(text string, pos int) string {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	prefix := text[lineStart:pos]
	if strings.TrimSpace(prefix) != "" {
		return ""
	}
	return prefix
}

func sameIDs(records []Record, ids []string) bool {
	if len(records) != len(ids) {
		return false
	}
	for i, rec := range records {
		if rec.ID != ids[i] {
			return false
		}
	}
	return true
}

// MissingIDs returns the ids of want that are not declared in text.
func MissingIDs(text string, want []string) ([]string, error) {
	records, err := Extract(text)
	if err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(records))
	for _, rec := range records {
		have[rec.ID] = struct{}{}
	}
	var missing []string
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
