package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

// Point is a coordinate in the canvas's intrinsic pixel space. Input in
// viewport coordinates must be converted before a point is recorded.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen or eraser gesture. Color is ignored when
// Tool is eraser; eraser strokes paint the background color on replay.
type Stroke struct {
	Points PointList `json:"points" db:"points"`
	Color  string    `json:"color" db:"color"`
	Size   float64   `json:"size" db:"size"`
	Tool   Tool      `json:"tool" db:"tool"`
}

// PointList stores stroke points as a jsonb column.
type PointList []Point

func (p PointList) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PointList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("unsupported point list type %T", src)
	}
}
