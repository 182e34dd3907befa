package ownmaprenderer

import (
	"fmt"
	"image/color"

	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/jamesrr39/ownmap-editor/ownmaprenderer/multipolygon"
	"github.com/jamesrr39/ownmap-editor/styling"
	"github.com/paulmach/orb"
)

// Painter draws in pixel space. Selected primitives are highlighted by the painter.
type Painter interface {
	DrawLine(id ownmap.PrimitiveID, points []orb.Point, style *styling.LineStyle, selected bool)
	DrawArea(id ownmap.PrimitiveID, polygon orb.Polygon, style *styling.AreaStyle, selected bool)
	DrawNode(id ownmap.PrimitiveID, point orb.Point, style *styling.NodeStyle, name string, selected bool)
	DrawIcon(id ownmap.PrimitiveID, point orb.Point, style *styling.IconStyle, name string, selected bool)
	DrawRestriction(id ownmap.PrimitiveID, icon *multipolygon.RestrictionIcon, style *styling.IconStyle, selected, disabled bool)
}

type PaintOpKind string

const (
	PaintOpKindLine        PaintOpKind = "line"
	PaintOpKindArea        PaintOpKind = "area"
	PaintOpKindNode        PaintOpKind = "node"
	PaintOpKindIcon        PaintOpKind = "icon"
	PaintOpKindRestriction PaintOpKind = "restriction"
)

// PaintOp is one call to a painter
type PaintOp struct {
	Kind      PaintOpKind                   `json:"kind"`
	Primitive ownmap.PrimitiveID            `json:"primitive"`
	Points    []orb.Point                   `json:"points,omitempty"`
	Polygon   orb.Polygon                   `json:"polygon,omitempty"`
	Color     string                        `json:"color,omitempty"`
	Width     float64                       `json:"width,omitempty"`
	Icon      string                        `json:"icon,omitempty"`
	Name      string                        `json:"name,omitempty"`
	ZIndex    int                           `json:"zIndex"`
	Selected  bool                          `json:"selected"`
	Disabled  bool                          `json:"disabled,omitempty"`
	Placement *multipolygon.RestrictionIcon `json:"placement,omitempty"`
}

// RecordingPainter keeps the paint calls in order instead of drawing them
type RecordingPainter struct {
	Ops []*PaintOp
}

func NewRecordingPainter() *RecordingPainter {
	return &RecordingPainter{Ops: []*PaintOp{}}
}

func (rp *RecordingPainter) DrawLine(id ownmap.PrimitiveID, points []orb.Point, style *styling.LineStyle, selected bool) {
	rp.Ops = append(rp.Ops, &PaintOp{
		Kind:      PaintOpKindLine,
		Primitive: id,
		Points:    points,
		Color:     hexColor(style.LineColor),
		Width:     style.LineWidth,
		ZIndex:    style.ZIndex,
		Selected:  selected,
	})
}

func (rp *RecordingPainter) DrawArea(id ownmap.PrimitiveID, polygon orb.Polygon, style *styling.AreaStyle, selected bool) {
	rp.Ops = append(rp.Ops, &PaintOp{
		Kind:      PaintOpKindArea,
		Primitive: id,
		Polygon:   polygon,
		Color:     hexColor(style.FillColor),
		ZIndex:    style.ZIndex,
		Selected:  selected,
	})
}

func (rp *RecordingPainter) DrawNode(id ownmap.PrimitiveID, point orb.Point, style *styling.NodeStyle, name string, selected bool) {
	rp.Ops = append(rp.Ops, &PaintOp{
		Kind:      PaintOpKindNode,
		Primitive: id,
		Points:    []orb.Point{point},
		Color:     hexColor(style.TextColor),
		Name:      name,
		ZIndex:    style.ZIndex,
		Selected:  selected,
	})
}

func (rp *RecordingPainter) DrawIcon(id ownmap.PrimitiveID, point orb.Point, style *styling.IconStyle, name string, selected bool) {
	rp.Ops = append(rp.Ops, &PaintOp{
		Kind:      PaintOpKindIcon,
		Primitive: id,
		Points:    []orb.Point{point},
		Icon:      style.IconName,
		Name:      name,
		ZIndex:    style.ZIndex,
		Selected:  selected,
	})
}

func (rp *RecordingPainter) DrawRestriction(id ownmap.PrimitiveID, icon *multipolygon.RestrictionIcon, style *styling.IconStyle, selected, disabled bool) {
	rp.Ops = append(rp.Ops, &PaintOp{
		Kind:      PaintOpKindRestriction,
		Primitive: id,
		Points:    []orb.Point{icon.Via},
		Icon:      style.IconName,
		ZIndex:    style.ZIndex,
		Selected:  selected,
		Disabled:  disabled,
		Placement: icon,
	})
}

// OpsFor returns the ops painting the primitive
func (rp *RecordingPainter) OpsFor(id ownmap.PrimitiveID) []*PaintOp {
	var ops []*PaintOp
	for _, op := range rp.Ops {
		if op.Primitive == id {
			ops = append(ops, op)
		}
	}
	return ops
}

func (rp *RecordingPainter) Reset() {
	rp.Ops = []*PaintOp{}
}

func hexColor(c color.Color) string {
	if c == nil {
		return ""
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", rgba.R, rgba.G, rgba.B, rgba.A)
}
