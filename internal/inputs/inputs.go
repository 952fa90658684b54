// Package inputs selects an input file from an ordered candidate list.
// Selection is pure so the policy is testable without a filesystem; callers
// supply an existence probe, typically backed by os.Stat.
package inputs

// Choose returns the first candidate for which exists reports true, in the
// order given. The boolean is false when no candidate exists; the caller
// decides whether that is fatal.
func Choose(candidates []string, exists func(string) bool) (string, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if exists(c) {
			return c, true
		}
	}
	return "", false
}
