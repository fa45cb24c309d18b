package domain

import "time"

// Rack Model
type Rack struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                  // Primary key
	Name      string    `gorm:"size:100;not null" json:"name"`                                         // Rack label
	Rows      int       `gorm:"not null" json:"rows"`                                                  // Number of rows, >= 1
	Columns   int       `gorm:"not null" json:"columns"`                                               // Number of columns, >= 1
	UserID    uint      `gorm:"index;not null" json:"userId"`                                          // Owning user
	Geckos    []Gecko   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"geckos,omitempty"` // Housed geckos
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Contains reports whether (row, column) lies inside the rack.
func (r *Rack) Contains(row, column int) bool {
	return row >= 1 && row <= r.Rows && column >= 1 && column <= r.Columns
}

// Cell is one addressable slot of a rack grid.
type Cell struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Gecko  *Gecko `json:"gecko,omitempty"`
	Status Status `json:"status"`
}

// Grid is a rack rendered row by row, top row first.
type Grid struct {
	Rack  *Rack    `json:"rack"`
	Cells [][]Cell `json:"cells"`
}

// BuildGrid lays geckos out on the rack's cells. The first row of the result is the
// highest row number, matching how racks are drawn on the shelf.
func BuildGrid(rack *Rack, geckos []Gecko) *Grid {
	byCell := make(map[[2]int]*Gecko, len(geckos))
	for i := range geckos {
		byCell[[2]int{geckos[i].Row, geckos[i].Column}] = &geckos[i]
	}
	cells := make([][]Cell, 0, rack.Rows)
	for row := rack.Rows; row >= 1; row-- {
		line := make([]Cell, 0, rack.Columns)
		for col := 1; col <= rack.Columns; col++ {
			cell := Cell{Row: row, Column: col, Status: StatusEmpty}
			if g, ok := byCell[[2]int{row, col}]; ok {
				cell.Gecko = g
				cell.Status = g.Status
			}
			line = append(line, cell)
		}
		cells = append(cells, line)
	}
	return &Grid{Rack: rack, Cells: cells}
}
