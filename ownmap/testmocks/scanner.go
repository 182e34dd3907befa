package testmocks

import (
	"github.com/paulmach/osm"
)

type MockScanner struct {
	ScanFunc   func() bool
	ObjectFunc func() osm.Object
	ErrFunc    func() error
	CloseFunc  func() error
}

func (s *MockScanner) Scan() bool {
	return s.ScanFunc()
}

func (s *MockScanner) Object() osm.Object {
	return s.ObjectFunc()
}

func (s *MockScanner) Err() error {
	return s.ErrFunc()
}

func (s *MockScanner) Close() error {
	return s.CloseFunc()
}

func NewMockScannerFromObjects(objects ...osm.Object) *MockScanner {
	index := -1
	return &MockScanner{
		ScanFunc: func() bool {
			if index+1 >= len(objects) {
				return false
			}

			index++
			return true
		},
		ObjectFunc: func() osm.Object {
			return objects[index]
		},
		ErrFunc: func() error {
			return nil
		},
		CloseFunc: func() error {
			return nil
		},
	}
}
