package webservices

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/jamesrr39/semaphore"
)

// Editor owns the data set for the web services. The data set isn't safe for concurrent use,
// so handlers only touch it inside Do, one at a time.
type Editor struct {
	dataSet *ownmapdataset.DataSet
	sema    *semaphore.Semaphore
}

func NewEditor(dataSet *ownmapdataset.DataSet) *Editor {
	return &Editor{dataSet, semaphore.NewSemaphore(1)}
}

func (e *Editor) Do(fn func(ds *ownmapdataset.DataSet) errorsx.Error) errorsx.Error {
	e.sema.Add()
	defer e.sema.Done()

	return fn(e.dataSet)
}

// Wait blocks until no handler holds the data set
func (e *Editor) Wait() {
	e.sema.Wait()
}
