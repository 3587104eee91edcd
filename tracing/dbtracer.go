package tracing

import "github.com/sarchlab/memspace/datarecording"

// EventTable is the table the DBTracer writes records into.
const EventTable = "memspace_events"

// DBTracer stores every record as a row of EventTable.
type DBTracer struct {
	recorder datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer and the table it writes to.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	recorder.CreateTable(EventTable, Record{})

	return &DBTracer{recorder: recorder}
}

// Trace buffers the record in the recorder.
func (t *DBTracer) Trace(r Record) {
	t.recorder.InsertData(EventTable, r)
}

// Flush writes the buffered records.
func (t *DBTracer) Flush() {
	t.recorder.Flush()
}
