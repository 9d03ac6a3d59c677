package changes

import "fmt"

// fakeTree is an in-memory Tree keyed by commit id.
type fakeTree struct {
	head    string
	tracked []string
	diffs   map[string][]string // "from..to" -> names
	err     error

	headCalls, diffCalls, listCalls int
}

func (f *fakeTree) Head() (string, error) {
	f.headCalls++
	return f.head, f.err
}

func (f *fakeTree) DiffNames(from, to string) ([]string, error) {
	f.diffCalls++
	if f.err != nil {
		return nil, f.err
	}
	names, ok := f.diffs[from+".."+to]
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", from, ErrUnknownCommit)
	}
	return names, nil
}

func (f *fakeTree) ListTracked() ([]string, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tracked, nil
}
