package ownmapdal

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

var ErrUnknownFileType = errors.New("unknown OSM file type, expected .osm or .pbf")

// Scanner streams OSM objects out of a data file
type Scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

type pbfScanner struct {
	file gofs.File
	*osmpbf.Scanner
	headerDone bool
	header     *osmpbf.Header
}

// Scan emits the header bounding box, if any, before the first object
func (s *pbfScanner) Scan() bool {
	if !s.headerDone {
		s.headerDone = true
		header, err := s.Scanner.Header()
		if err == nil && header != nil && header.Bounds != nil {
			s.header = header
			return true
		}
	}
	s.header = nil
	return s.Scanner.Scan()
}

func (s *pbfScanner) Object() osm.Object {
	if s.header != nil {
		return s.header.Bounds
	}
	return s.Scanner.Object()
}

func (s *pbfScanner) Close() error {
	err := s.Scanner.Close()
	if err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

type xmlScanner struct {
	file gofs.File
	*osmxml.Scanner
}

func (s *xmlScanner) Close() error {
	err := s.Scanner.Close()
	if err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// OpenFile opens an OSM data file. The format is chosen by the file extension.
func OpenFile(ctx context.Context, fs gofs.Fs, path string) (Scanner, errorsx.Error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pbf" && ext != ".osm" {
		return nil, errorsx.Wrap(ErrUnknownFileType, "path", path)
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	if ext == ".pbf" {
		return &pbfScanner{file: file, Scanner: osmpbf.New(ctx, file, runtime.NumCPU())}, nil
	}

	return &xmlScanner{file, osmxml.New(ctx, file)}, nil
}
