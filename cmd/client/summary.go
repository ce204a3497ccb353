package main

import (
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/olekukonko/tablewriter"
)

// tally counts broadcasts per sender for the exit summary.
type tally struct {
	mu     sync.Mutex
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(from string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[from]++
}

func (t *tally) render(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.counts) == 0 {
		return
	}
	names := make([]string, 0, len(t.counts))
	for name := range t.counts {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"From", "Messages"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, name := range names {
		table.Append([]string{name, strconv.Itoa(t.counts[name])})
	}
	table.Render()
}
