// Package cache persists a snapshot of an assembled ACTION/GOTO table to
// disk using binary encoding, and reads it back. The CLI only writes the
// snapshot; it rebuilds the table from the grammar on every run.
package cache

import (
	"fmt"
	"os"

	"github.com/dekarrin/canonlr/internal/lrtable"
	"github.com/dekarrin/rezi"
)

// cell mirrors lrtable.ActionCell with exported fields so it can round-trip
// through rezi's binary encoding.
type cell struct {
	Kind   int
	Shift  int
	Reduce int
	Left   *cell
	Right  *cell
}

func fromActionCell(c lrtable.ActionCell) cell {
	out := cell{Kind: int(c.Kind), Shift: c.Shift, Reduce: c.Reduce}
	if c.Left != nil {
		left := fromActionCell(*c.Left)
		out.Left = &left
	}
	if c.Right != nil {
		right := fromActionCell(*c.Right)
		out.Right = &right
	}
	return out
}

func (c cell) toActionCell() lrtable.ActionCell {
	out := lrtable.ActionCell{Kind: lrtable.ActionKind(c.Kind), Shift: c.Shift, Reduce: c.Reduce}
	if c.Left != nil {
		left := c.Left.toActionCell()
		out.Left = &left
	}
	if c.Right != nil {
		right := c.Right.toActionCell()
		out.Right = &right
	}
	return out
}

// MarshalBinary implements encoding.BinaryMarshaler so a cell can be nested
// inside a Snapshot's binary encoding via encBinary.
func (c cell) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encBinaryInt(c.Kind)...)
	data = append(data, encBinaryInt(c.Shift)...)
	data = append(data, encBinaryInt(c.Reduce)...)

	data = append(data, encBinaryBool(c.Left != nil)...)
	if c.Left != nil {
		data = append(data, encBinary(*c.Left)...)
	}
	data = append(data, encBinaryBool(c.Right != nil)...)
	if c.Right != nil {
		data = append(data, encBinary(*c.Right)...)
	}
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, reversing
// MarshalBinary.
func (c *cell) UnmarshalBinary(data []byte) error {
	var err error
	var n int

	c.Kind, n, err = decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[n:]

	c.Shift, n, err = decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[n:]

	c.Reduce, n, err = decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[n:]

	hasLeft, n, err := decBinaryBool(data)
	if err != nil {
		return err
	}
	data = data[n:]
	if hasLeft {
		c.Left = &cell{}
		n, err = decBinary(data, c.Left)
		if err != nil {
			return err
		}
		data = data[n:]
	}

	hasRight, n, err := decBinaryBool(data)
	if err != nil {
		return err
	}
	data = data[n:]
	if hasRight {
		c.Right = &cell{}
		if _, err := decBinary(data, c.Right); err != nil {
			return err
		}
	}

	return nil
}

// Snapshot is the serializable projection of a Table: the ACTION/GOTO grids
// plus their column labels. It intentionally does not carry the Family or
// Grammar a Table was built from, so a Snapshot is sufficient to replay
// ordinary shifts, reduces, and accepts but not panic-mode recovery; callers
// that need recovery should rebuild the Table from source instead of
// loading a cached Snapshot.
type Snapshot struct {
	Terms    []string
	NonTerms []string
	Action   [][]cell
	Goto     [][]int
	Conflict bool
}

// FromTable projects tab into a Snapshot.
func FromTable(tab lrtable.Table) Snapshot {
	terms := tab.Terminals()
	nonTerms := tab.NonTerminals()

	termNames := make([]string, len(terms))
	for i, t := range terms {
		termNames[i] = t.Ident()
	}
	nonTermNames := make([]string, len(nonTerms))
	for i, nt := range nonTerms {
		nonTermNames[i] = nt.Ident()
	}

	action := make([][]cell, tab.Rows())
	gotoGrid := make([][]int, tab.Rows())
	for row := 0; row < tab.Rows(); row++ {
		action[row] = make([]cell, len(terms))
		for i, t := range terms {
			c, _ := tab.Action(row, t)
			action[row][i] = fromActionCell(c)
		}
		gotoGrid[row] = make([]int, len(nonTerms))
		for i, nt := range nonTerms {
			dest, has, _ := tab.Goto(row, nt)
			if has {
				gotoGrid[row][i] = dest
			} else {
				gotoGrid[row][i] = -1
			}
		}
	}

	return Snapshot{
		Terms:    termNames,
		NonTerms: nonTermNames,
		Action:   action,
		Goto:     gotoGrid,
		Conflict: tab.Conflict(),
	}
}

// MarshalBinary implements encoding.BinaryMarshaler so a Snapshot can be
// handed directly to rezi.EncBinary.
func (snap Snapshot) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encBinaryInt(len(snap.Terms))...)
	for _, t := range snap.Terms {
		data = append(data, encBinaryString(t)...)
	}

	data = append(data, encBinaryInt(len(snap.NonTerms))...)
	for _, nt := range snap.NonTerms {
		data = append(data, encBinaryString(nt)...)
	}

	data = append(data, encBinaryInt(len(snap.Action))...)
	for _, row := range snap.Action {
		data = append(data, encBinaryInt(len(row))...)
		for _, c := range row {
			data = append(data, encBinary(c)...)
		}
	}

	data = append(data, encBinaryInt(len(snap.Goto))...)
	for _, row := range snap.Goto {
		data = append(data, encBinaryInt(len(row))...)
		for _, v := range row {
			data = append(data, encBinaryInt(v)...)
		}
	}

	data = append(data, encBinaryBool(snap.Conflict)...)

	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, reversing
// MarshalBinary.
func (snap *Snapshot) UnmarshalBinary(data []byte) error {
	termCount, n, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[n:]
	snap.Terms = make([]string, termCount)
	for i := range snap.Terms {
		snap.Terms[i], n, err = decBinaryString(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}

	nonTermCount, n, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[n:]
	snap.NonTerms = make([]string, nonTermCount)
	for i := range snap.NonTerms {
		snap.NonTerms[i], n, err = decBinaryString(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}

	rowCount, n, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[n:]
	snap.Action = make([][]cell, rowCount)
	for r := range snap.Action {
		colCount, n, err := decBinaryInt(data)
		if err != nil {
			return err
		}
		data = data[n:]
		snap.Action[r] = make([]cell, colCount)
		for c := range snap.Action[r] {
			n, err := decBinary(data, &snap.Action[r][c])
			if err != nil {
				return err
			}
			data = data[n:]
		}
	}

	gotoRowCount, n, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[n:]
	snap.Goto = make([][]int, gotoRowCount)
	for r := range snap.Goto {
		colCount, n, err := decBinaryInt(data)
		if err != nil {
			return err
		}
		data = data[n:]
		snap.Goto[r] = make([]int, colCount)
		for c := range snap.Goto[r] {
			snap.Goto[r][c], n, err = decBinaryInt(data)
			if err != nil {
				return err
			}
			data = data[n:]
		}
	}

	snap.Conflict, _, err = decBinaryBool(data)
	if err != nil {
		return err
	}

	return nil
}

// Encode binary-encodes snap using the same encoding the rest of this
// module's storage layer uses for other on-disk structures.
func Encode(snap Snapshot) []byte {
	return rezi.EncBinary(snap)
}

// Decode reverses Encode.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if _, err := rezi.DecBinary(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("cache: decode table snapshot: %w", err)
	}
	return snap, nil
}

// SaveFile encodes tab and writes it to path.
func SaveFile(path string, tab lrtable.Table) error {
	data := Encode(FromTable(tab))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and decodes a Snapshot previously written by SaveFile.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cache: read %s: %w", path, err)
	}
	return Decode(data)
}
