package ownmaprenderer

import (
	"context"
	"sort"

	"github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/jamesrr39/ownmap-editor/ownmaprenderer/multipolygon"
	"github.com/jamesrr39/ownmap-editor/styling"
	"github.com/paulmach/orb"
)

const (
	DefaultFillAreas = 10000000
	// primitives without a matching rule are only shown below this scale when ZoomLevelDisplay is on
	unstyledMaxScale = 1500
)

type RenderOptions struct {
	DrawMultipolygon bool
	DrawRestriction  bool
	// FillAreas is the scale below which areas are filled
	FillAreas       float64
	LeftHandTraffic bool
	// ZoomLevelDisplay hides primitives no rule matches when zoomed out further than the fallback range
	ZoomLevelDisplay bool
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		DrawMultipolygon: true,
		DrawRestriction:  true,
		FillAreas:        DefaultFillAreas,
	}
}

var (
	fallbackRange = styling.Range{Lower: 0, Upper: unstyledMaxScale}

	untaggedWayStyle = &styling.ResolvedStyle{
		Style:   styling.UntaggedWayStyle,
		Range:   fallbackRange,
		Subpart: styling.DefaultSubpart,
	}
	simpleNodeStyle = &styling.ResolvedStyle{
		Style:   styling.SimpleNodeStyle,
		Range:   fallbackRange,
		Subpart: styling.DefaultSubpart,
	}
)

// Renderer paints a data set. It is not safe for concurrent use.
type Renderer struct {
	logger    *logpkg.Logger
	options   RenderOptions
	cacheSize int
	cache     *styling.StyleCache

	paintID uint64
	// the pass in which a primitive was last drawn, and last filled as an area
	drawn     map[ownmap.PrimitiveID]uint64
	drawnArea map[ownmap.PrimitiveID]uint64
}

func NewRenderer(logger *logpkg.Logger, options RenderOptions, styleCacheSize int) *Renderer {
	return &Renderer{
		logger:    logger,
		options:   options,
		cacheSize: styleCacheSize,
		drawn:     make(map[ownmap.PrimitiveID]uint64),
		drawnArea: make(map[ownmap.PrimitiveID]uint64),
	}
}

func (r *Renderer) Options() RenderOptions {
	return r.options
}

// PaintID is the id of the last render pass
func (r *Renderer) PaintID() uint64 {
	return r.paintID
}

func (r *Renderer) styleCache(style styling.Style) *styling.StyleCache {
	if r.cache == nil || r.cache.Style() != style {
		r.cache = styling.NewStyleCache(style, r.cacheSize)
	}
	return r.cache
}

// Render paints the primitives of ds inside the viewport. The diagnostics of ds are replaced by the ones found in this pass.
func (r *Renderer) Render(ctx context.Context, ds *ownmapdataset.DataSet, style styling.Style, viewport Viewport, painter Painter) errorsx.Error {
	if style == nil {
		return errorsx.Errorf("no style given")
	}

	ds.Diagnostics().Clear()
	r.paintID++

	// stamps of earlier passes never equal the current pass id, so they can be dropped at any time
	if len(r.drawn)+len(r.drawnArea) > 2*ds.Len() {
		r.drawn = make(map[ownmap.PrimitiveID]uint64)
		r.drawnArea = make(map[ownmap.PrimitiveID]uint64)
	}

	pass := &renderPass{
		Renderer:  r,
		ctx:       ctx,
		ds:        ds,
		style:     style,
		cache:     r.styleCache(style),
		viewport:  viewport,
		painter:   painter,
		assembler: multipolygon.NewAssembler(ds, viewport, ds.Diagnostics()),
		bound:     viewport.Bound(),
		scale:     viewport.Scale(),
	}
	pass.run()

	r.logger.Debug("render pass %d at scale %.1f: %d diagnostics", r.paintID, pass.scale, ds.Diagnostics().Len())

	return nil
}

type renderPass struct {
	*Renderer
	ctx       context.Context
	ds        *ownmapdataset.DataSet
	style     styling.Style
	cache     *styling.StyleCache
	viewport  Viewport
	painter   Painter
	assembler *multipolygon.Assembler

	bound            orb.Bound
	scale            float64
	drawMultipolygon bool
}

func (p *renderPass) run() {
	fillAreas := p.options.FillAreas > p.scale && p.style.HasAreas()
	p.drawMultipolygon = p.options.DrawMultipolygon && fillAreas

	ways := p.selectedLast(p.ds.SearchWays(p.bound))
	nodes := p.ds.SearchNodes(p.bound)

	endSpan := startSpan(p.ctx, "relations")
	for _, relation := range p.relationsInView(ways, nodes) {
		if relation.IsDrawable() {
			p.paintRelation(relation)
		}
	}
	endSpan()

	if fillAreas {
		endSpan = startSpan(p.ctx, "areas")
		var noAreaWays []*ownmap.Way
		for _, way := range ways {
			id := way.PrimitiveID()
			if !way.IsDrawable() || p.drawn[id] == p.paintID {
				continue
			}
			if p.isArea(way) && p.drawnArea[id] != p.paintID {
				p.drawWay(way, true)
			} else {
				noAreaWays = append(noAreaWays, way)
			}
		}
		endSpan()

		endSpan = startSpan(p.ctx, "ways")
		for _, way := range noAreaWays {
			p.drawWay(way, false)
		}
		endSpan()
	} else {
		endSpan = startSpan(p.ctx, "ways")
		for _, way := range ways {
			if way.IsDrawable() && !p.ds.IsSelected(way) {
				p.drawWay(way, false)
			}
		}
		endSpan()
	}

	endSpan = startSpan(p.ctx, "selected")
	for _, prim := range p.ds.GetSelected() {
		if !prim.IsUsable() || p.drawn[prim.PrimitiveID()] == p.paintID {
			continue
		}

		switch m := prim.(type) {
		case *ownmap.Way:
			p.drawWay(m, false)
		case *ownmap.Relation:
			// member ways were drawn with the relation
			for _, member := range p.ds.GetMemberPrimitives(m) {
				if node, ok := member.(*ownmap.Node); ok && node.IsDrawable() {
					p.drawSelectedMember(node, p.styleOf(node), true, true)
				}
			}
		}
	}
	endSpan()

	endSpan = startSpan(p.ctx, "nodes")
	for _, node := range nodes {
		if node.IsIncomplete() || node.IsDeleted() {
			continue
		}
		if node.IsFiltered() && !p.ds.IsSelected(node) {
			continue
		}
		if p.drawn[node.PrimitiveID()] == p.paintID {
			continue
		}
		p.drawNode(node)
	}
	endSpan()
}

// relationsInView are the relations with a member in view
func (p *renderPass) relationsInView(ways []*ownmap.Way, nodes []*ownmap.Node) []*ownmap.Relation {
	primitives := make([]ownmap.Primitive, 0, len(ways)+len(nodes))
	for _, way := range ways {
		primitives = append(primitives, way)
	}
	for _, node := range nodes {
		primitives = append(primitives, node)
	}
	return p.ds.GetReferringRelations(primitives...)
}

// selectedLast orders by id, with the selected ways at the end so they are painted on top
func (p *renderPass) selectedLast(ways []*ownmap.Way) []*ownmap.Way {
	sorted := make([]*ownmap.Way, len(ways))
	copy(sorted, ways)
	sort.SliceStable(sorted, func(i, j int) bool {
		selectedI, selectedJ := p.ds.IsSelected(sorted[i]), p.ds.IsSelected(sorted[j])
		if selectedI != selectedJ {
			return selectedJ
		}
		return sorted[i].PrimitiveID().Less(sorted[j].PrimitiveID())
	})
	return sorted
}

// resolve returns the default subpart of the primitive's style, nil when no rule matches
func (p *renderPass) resolve(prim ownmap.Primitive) *styling.ResolvedStyle {
	return p.cache.Resolve(styling.NewEnvironment(prim, p.ds, p.scale), p.ds.Generation()).Default()
}

// styleOf is resolve with the fallback styles for ways and nodes
func (p *renderPass) styleOf(prim ownmap.Primitive) *styling.ResolvedStyle {
	resolved := p.resolve(prim)
	if resolved != nil {
		return resolved
	}

	switch prim.(type) {
	case *ownmap.Node:
		return simpleNodeStyle
	case *ownmap.Way:
		return untaggedWayStyle
	}
	return nil
}

// zoomOK tests the range of a resolved style against the frame scale.
// The fallback styles are only limited by their range when ZoomLevelDisplay is on.
func (p *renderPass) zoomOK(resolved *styling.ResolvedStyle) bool {
	if resolved == nil {
		return !p.options.ZoomLevelDisplay || p.scale < unstyledMaxScale
	}
	if !p.options.ZoomLevelDisplay && (resolved == untaggedWayStyle || resolved == simpleNodeStyle) {
		return true
	}
	return resolved.Range.Contains(p.scale)
}

func (p *renderPass) isArea(way *ownmap.Way) bool {
	return areaStyleOf(p.resolve(way)) != nil
}

func areaStyleOf(resolved *styling.ResolvedStyle) *styling.AreaStyle {
	if resolved == nil {
		return nil
	}
	areaStyle, _ := resolved.Style.(*styling.AreaStyle)
	return areaStyle
}

func (p *renderPass) wayPoints(way *ownmap.Way) []orb.Point {
	nodes := p.ds.GetWayNodes(way)
	points := make([]orb.Point, 0, len(nodes))
	for _, node := range nodes {
		if node.HasCoords() {
			points = append(points, p.viewport.Point(node))
		}
	}
	return points
}

func (p *renderPass) drawWayLine(way *ownmap.Way, style *styling.LineStyle, selected bool) {
	p.painter.DrawLine(way.PrimitiveID(), p.wayPoints(way), style, selected)
}

func (p *renderPass) drawWayArea(way *ownmap.Way, style *styling.AreaStyle, selected bool) {
	p.painter.DrawArea(way.PrimitiveID(), orb.Polygon{orb.Ring(p.wayPoints(way))}, style, selected)
}

func (p *renderPass) drawWay(way *ownmap.Way, fillAreas bool) {
	if way.NodeCount() < 2 || p.ds.WayHasIncompleteNodes(way) {
		return
	}

	bound, ok := p.ds.WayBound(way)
	if !ok || !bound.Intersects(p.bound) {
		return
	}

	resolved := p.styleOf(way)
	if !p.zoomOK(resolved) {
		return
	}

	selected := p.ds.IsSelected(way)
	switch style := resolved.Style.(type) {
	case *styling.LineStyle:
		p.drawWayLine(way, style, selected)
	case *styling.AreaStyle:
		if fillAreas {
			p.drawWayArea(way, style, selected)
			if !way.IsClosed() {
				p.ds.Diagnostics().Errorf(way, "Area style way is not closed.")
			}
		}
		if style.Line != nil {
			p.drawWayLine(way, style.Line, selected)
		}
	}
}

func (p *renderPass) drawNode(node *ownmap.Node) {
	if !node.HasCoords() || !p.bound.Contains(node.Point()) {
		return
	}

	resolved := p.styleOf(node)
	if p.zoomOK(resolved) {
		p.paintNode(node, resolved.Style, p.ds.IsSelected(node))
	}
}

func (p *renderPass) paintNode(node *ownmap.Node, style styling.ElemStyle, selected bool) {
	point := p.viewport.Point(node)
	name, _ := node.GetTag("name")

	switch s := style.(type) {
	case *styling.NodeStyle:
		p.painter.DrawNode(node.PrimitiveID(), point, s, name, selected)
	case *styling.IconStyle:
		if !s.Annotate {
			name = ""
		}
		p.painter.DrawIcon(node.PrimitiveID(), point, s, name, selected)
	}
}

// drawSelectedMember draws a member of a selected relation and claims it for this pass
func (p *renderPass) drawSelectedMember(prim ownmap.Primitive, resolved *styling.ResolvedStyle, area, areaSelected bool) {
	switch m := prim.(type) {
	case *ownmap.Way:
		switch style := resolved.Style.(type) {
		case *styling.AreaStyle:
			if style.Line != nil {
				p.drawWayLine(m, style.Line, true)
			}
			if area {
				p.drawWayArea(m, style, areaSelected)
			}
		case *styling.LineStyle:
			p.drawWayLine(m, style, true)
		}
	case *ownmap.Node:
		if m.HasCoords() && p.zoomOK(resolved) {
			p.paintNode(m, resolved.Style, true)
		}
	}

	p.drawn[prim.PrimitiveID()] = p.paintID
}

func (p *renderPass) paintRelation(r *ownmap.Relation) {
	if p.drawMultipolygon && r.IsMultipolygon() {
		if p.drawMultipolygonRelation(r) {
			return
		}
	} else if p.options.DrawRestriction && r.IsRestriction() {
		p.drawRestriction(r)
	}

	if !p.ds.IsSelected(r) {
		return
	}

	for _, member := range p.ds.GetMemberPrimitives(r) {
		if way, ok := member.(*ownmap.Way); ok && way.IsDrawable() {
			p.drawSelectedMember(way, p.styleOf(way), true, true)
		}
	}
}

func (p *renderPass) drawRestriction(r *ownmap.Relation) {
	icon, ok := p.assembler.Restriction(r, p.options.LeftHandTraffic)
	if !ok {
		return
	}

	var iconStyle *styling.IconStyle
	if resolved := p.resolve(r); resolved != nil {
		iconStyle, _ = resolved.Style.(*styling.IconStyle)
	}

	if iconStyle == nil {
		restriction, _ := r.GetTag("restriction")
		p.ds.Diagnostics().Errorf(r, "Style for restriction %s not found.", restriction)
		return
	}

	p.painter.DrawRestriction(r.PrimitiveID(), icon, iconStyle, p.ds.IsSelected(r), r.IsDisabled())
}

// drawMultipolygonRelation fills the multipolygon and claims its member ways.
// It returns false when neither the relation nor an outer way has an area style.
func (p *renderPass) drawMultipolygonRelation(r *ownmap.Relation) bool {
	mp := p.assembler.Multipolygon(r)
	relationSelected := p.ds.IsSelected(r)

	if relationSelected {
		for _, way := range mp.OtherRoles {
			p.drawSelectedMember(way, p.styleOf(way), true, true)
		}
	}

	// relations without an area style of their own take the style of the first outer way with one
	mpStyle := p.resolve(r)
	areaStyle := areaStyleOf(mpStyle)
	for _, outer := range mp.Outer {
		if areaStyle != nil {
			break
		}
		mpStyle = p.resolve(outer)
		areaStyle = areaStyleOf(mpStyle)
	}
	if areaStyle == nil {
		return false
	}

	zoomOK := p.zoomOK(mpStyle)
	// without an outer way the member ways are still claimed below
	visible := !mp.HasOuter()
	if !mp.HasOuter() || zoomOK {
		for _, pd := range p.assembler.Polygons(mp) {
			polygon := pd.Polygon()
			if !p.isPolygonVisible(polygon) {
				continue
			}

			selected := pd.Selected || relationSelected || (pd.Way != nil && p.ds.IsSelected(pd.Way))
			p.painter.DrawArea(r.PrimitiveID(), polygon, areaStyle, selected)
			visible = true
		}
	}

	if !visible {
		return true
	}

	for _, inner := range mp.Inner {
		id := inner.PrimitiveID()
		innerStyle := p.resolve(inner)
		if innerStyle == nil {
			if p.ds.IsSelected(inner) {
				continue
			}
			if zoomOK && areaStyle.Line != nil && (p.drawn[id] != p.paintID || !mp.HasOuter()) {
				p.drawWayLine(inner, areaStyle.Line, relationSelected)
			}
			p.drawn[id] = p.paintID
			continue
		}

		sameStyle := innerStyle.Style == mpStyle.Style
		if relationSelected {
			p.drawSelectedMember(inner, innerStyle, !sameStyle, p.ds.IsSelected(inner))
		}
		if sameStyle {
			p.ds.Diagnostics().Warnf(r, "Style for inner way '%s' equals multipolygon.", ownmap.DisplayName(inner))
			if !relationSelected {
				p.drawnArea[id] = p.paintID
			}
		}
	}

	for _, outer := range mp.Outer {
		id := outer.PrimitiveID()
		outerStyle := p.resolve(outer)
		if outerStyle == nil {
			// selected ways are drawn at the end
			if p.ds.IsSelected(outer) {
				continue
			}
			if zoomOK && areaStyle.Line != nil {
				p.drawWayLine(outer, areaStyle.Line, relationSelected)
			}
			p.drawn[id] = p.paintID
			continue
		}

		_, outerIsArea := outerStyle.Style.(*styling.AreaStyle)
		if outerIsArea && outerStyle.Style != mpStyle.Style {
			p.ds.Diagnostics().Errorf(r, "Style for outer way '%s' mismatches.", ownmap.DisplayName(outer))
		}
		if relationSelected {
			p.drawSelectedMember(outer, outerStyle, false, false)
		} else if outerIsArea {
			p.drawnArea[id] = p.paintID
		}
	}

	return true
}

// isPolygonVisible is false for polygons without extent or entirely outside the viewport
func (p *renderPass) isPolygonVisible(polygon orb.Polygon) bool {
	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return false
	}

	bound := polygon.Bound()
	if bound.Min.Equal(bound.Max) {
		return false
	}

	size := p.viewport.Size()
	return bound.Min.X() <= float64(size.X) &&
		bound.Min.Y() <= float64(size.Y) &&
		bound.Max.X() >= 0 &&
		bound.Max.Y() >= 0
}

// startSpan starts a tracing span when the context carries a trace. The returned func ends it.
func startSpan(ctx context.Context, name string) func() {
	if ctx.Value(tracing.TracerCtxKey) == nil || ctx.Value(tracing.TraceCtxKey) == nil {
		return func() {}
	}

	span := tracing.StartSpan(ctx, name)
	return func() {
		span.End(ctx)
	}
}
