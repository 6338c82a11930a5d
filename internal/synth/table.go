package synth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/cliffordt/internal/ring"
)

// TableHeader starts every generated table file.
const TableHeader = "# cliffordt-table v1"

// ErrMalformedTable wraps every table parse failure.
var ErrMalformedTable = errors.New("synth: malformed table")

// Entry is one table row: a gate string and the gate it evaluates to.
type Entry struct {
	Gates string
	Gate  ring.Gate
}

// Table maps low-exponent gates to short gate strings. Entries are keyed
// by the whole gate; a second index keeps the shortest entry for each
// (u, t) part so that a gate whose phase exponent is missing can still be
// reached with trailing T gates. A Table is immutable once built and safe
// for concurrent reads.
type Table struct {
	index   map[string]int
	byUT    map[string]int
	entries []Entry
	maxSDE  int
	maxLen  int
}

func newTable() *Table {
	return &Table{index: make(map[string]int), byUT: make(map[string]int)}
}

// gateKey identifies a gate including its phase exponent.
func gateKey(g ring.Gate) string {
	return g.Key() + " " + strconv.Itoa(g.Phase)
}

// put stores e, replacing any earlier entry for the same gate in place.
// The (u, t) index keeps the shortest string seen for each (u, t), the
// first one on ties.
func (t *Table) put(e Entry) {
	key := gateKey(e.Gate)
	i, ok := t.index[key]
	if ok {
		t.entries[i] = e
	} else {
		i = len(t.entries)
		t.index[key] = i
		t.entries = append(t.entries, e)
	}
	ut := e.Gate.Key()
	if j, ok := t.byUT[ut]; !ok || j == i || len(e.Gates) < len(t.entries[j].Gates) {
		t.byUT[ut] = i
	}
	t.maxSDE = max(t.maxSDE, e.Gate.SDE())
	t.maxLen = max(t.maxLen, len(e.Gates))
}

// Lookup returns the stored gate string for g, phase exponent included.
func (t *Table) Lookup(g ring.Gate) (string, bool) {
	i, ok := t.index[gateKey(g)]
	if !ok {
		return "", false
	}
	return t.entries[i].Gates, true
}

// LookupUpToPhase returns an entry with the same (u, t) part as g. Its
// phase exponent may differ from g's.
func (t *Table) LookupUpToPhase(g ring.Gate) (Entry, bool) {
	i, ok := t.byUT[g.Key()]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// MaxSDE returns the largest denominator exponent among the entries.
func (t *Table) MaxSDE() int { return t.maxSDE }

// Entries returns a copy of the entries in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// LoadTable parses a table file. Each non-comment line holds a gate string
// ("I" for the identity) followed by the twelve integers of its (u, t)
// part; the phase exponent comes from evaluating the string. Later lines
// override earlier lines for the same gate.
func LoadTable(r io.Reader) (*Table, error) {
	t := newTable()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		e, err := parseEntry(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTable, line, err)
		}
		t.put(e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("synth: read table: %w", err)
	}
	return t, nil
}

func parseEntry(text string) (Entry, error) {
	fields := strings.Fields(text)
	if len(fields) != 13 {
		return Entry{}, fmt.Errorf("want 13 fields, got %d", len(fields))
	}
	gates, err := ring.ParseGates(fields[0])
	if err != nil {
		return Entry{}, err
	}

	var c [12]*big.Int
	for i, f := range fields[1:] {
		v, ok := new(big.Int).SetString(f, 10)
		if !ok {
			return Entry{}, fmt.Errorf("component %d: invalid integer %q", i, f)
		}
		c[i] = v
	}
	g, err := ring.GateFromComponents(c)
	if err != nil {
		return Entry{}, err
	}

	applied, err := ring.Apply(gates)
	if err != nil {
		return Entry{}, err
	}
	if applied.Key() != g.Key() {
		return Entry{}, fmt.Errorf("gate string %q does not evaluate to the listed gate", fields[0])
	}
	return Entry{Gates: gates, Gate: applied}, nil
}

// WriteTo writes the table in file format: a header, then entries by
// descending string length with the identity last, so that loading keeps
// the shortest string for each (u, t).
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(bw, format, args...)
		total += int64(n)
		return err
	}

	if err := write("%s entries=%d table_sde=%d\n", TableHeader, len(t.entries), t.maxSDE); err != nil {
		return total, err
	}
	for _, e := range sortedForWrite(t.entries) {
		gates := e.Gates
		if gates == "" {
			gates = string(ring.LetterI)
		}
		if err := write("%s %s\n", gates, e.Gate.Key()); err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// sortedForWrite orders entries longest first while keeping insertion
// order among strings of equal length.
func sortedForWrite(entries []Entry) []Entry {
	maxLen := 0
	for _, e := range entries {
		maxLen = max(maxLen, len(e.Gates))
	}
	buckets := make([][]Entry, maxLen+1)
	for _, e := range entries {
		buckets[len(e.Gates)] = append(buckets[len(e.Gates)], e)
	}
	out := make([]Entry, 0, len(entries))
	for n := maxLen; n >= 0; n-- {
		out = append(out, buckets[n]...)
	}
	return out
}

// ReadTableFile loads a table from path.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("synth: open table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// WriteTableFile writes t to path, replacing any existing file.
func WriteTableFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("synth: create table: %w", err)
	}
	if _, err := t.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("synth: write table: %w", err)
	}
	return f.Close()
}
