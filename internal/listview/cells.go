package listview

import "slices"

type CellKey struct {
	Row    string
	Column string
}

// Cells — правки ячеек таблицы по ключу (строка, колонка), одна карта на всю таблицу.
type Cells struct {
	m map[CellKey]string
}

func NewCells() *Cells { return &Cells{m: map[CellKey]string{}} }

func (c *Cells) Set(row, col, value string) { c.m[CellKey{row, col}] = value }

func (c *Cells) Get(row, col string) (string, bool) {
	v, ok := c.m[CellKey{row, col}]
	return v, ok
}

// Row — все правки строки: колонка -> значение.
func (c *Cells) Row(row string) map[string]string {
	out := map[string]string{}
	for k, v := range c.m {
		if k.Row == row {
			out[k.Column] = v
		}
	}
	return out
}

// Rows — id строк, у которых есть правки.
func (c *Cells) Rows() []string {
	var out []string
	for k := range c.m {
		if !slices.Contains(out, k.Row) {
			out = append(out, k.Row)
		}
	}
	slices.Sort(out)
	return out
}

func (c *Cells) Reset(row string) {
	for k := range c.m {
		if k.Row == row {
			delete(c.m, k)
		}
	}
}

func (c *Cells) Len() int { return len(c.m) }
