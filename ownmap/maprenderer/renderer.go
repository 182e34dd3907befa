package maprenderer

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/jamesrr39/ownmap-editor/ownmaprenderer"
	"github.com/jamesrr39/ownmap-editor/styling"
)

type MapRenderer interface {
	Render(ctx context.Context, ds *ownmapdataset.DataSet, style styling.Style, viewport ownmaprenderer.Viewport, painter ownmaprenderer.Painter) errorsx.Error
}

var _ MapRenderer = (*ownmaprenderer.Renderer)(nil)
