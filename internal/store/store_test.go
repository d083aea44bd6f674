// SPDX-License-Identifier: MIT
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"eeg/internal/loader"
	"eeg/internal/record"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	parquet "github.com/parquet-go/parquet-go"
	"github.com/segmentio/kafka-go"
)

func testRows() []record.Row {
	return []record.Row{
		{Channel: "FP1", Seconds: 0, Voltage: 3.082},
		{Channel: "FP2", Seconds: 0, Voltage: -1.5},
		{Channel: "FP1", Seconds: 1, Voltage: 2.5},
	}
}

func TestStamp(t *testing.T) {
	got := Stamp("p-1", testRows()[:1])
	want := []Record{{ParticipantID: "p-1", Channel: "FP1", Seconds: 0, Voltage: 3.082}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Stamp = %+v, want %+v", got, want)
	}
}

func TestMemoryStoreWithLoader(t *testing.T) {
	m := NewMemoryStore("p-1")
	if err := loader.Ingest(context.Background(), testRows(), 2, m, nil); err != nil {
		t.Fatal(err)
	}
	if m.Batches() != 2 {
		t.Errorf("batches = %d, want 2", m.Batches())
	}
	if got := m.Records(); len(got) != 3 || got[2].Voltage != 2.5 || got[0].ParticipantID != "p-1" {
		t.Errorf("records = %+v", got)
	}
	_ = m.Close()
	if err := m.AppendBatch(context.Background(), testRows()); !errors.Is(err, ErrClosed) {
		t.Errorf("append after close = %v, want ErrClosed", err)
	}
}

func TestParquetStoreRowGroupPerBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.parquet")
	p, err := NewParquetStore(path, "p-2", "snappy")
	if err != nil {
		t.Fatal(err)
	}
	if err := loader.Ingest(context.Background(), testRows(), 2, p, nil); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := parquet.ReadFile[Record](path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !reflect.DeepEqual(got, Stamp("p-2", testRows())) {
		t.Errorf("read back %+v", got)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	st, _ := f.Stat()
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(pf.RowGroups()); n != 2 {
		t.Errorf("row groups = %d, want 2", n)
	}
}

var errDiskFull = errors.New("disk full")

// flakyFile fails every write while fail is set.
type flakyFile struct {
	buf    bytes.Buffer
	fail   bool
	closed bool
}

func (f *flakyFile) Write(b []byte) (int, error) {
	if f.fail {
		return 0, errDiskFull
	}
	return f.buf.Write(b)
}

func (f *flakyFile) Len() int { return f.buf.Len() }

func (f *flakyFile) Close() error {
	f.closed = true
	return nil
}

func TestParquetStoreFailedBatchNotPersisted(t *testing.T) {
	f := &flakyFile{}
	p := newParquetStore(f, "flaky.parquet", "p-3", parquet.WriteBufferSize(0))
	ctx := context.Background()
	rows := testRows()

	if err := p.AppendBatch(ctx, rows[:2]); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	committed := f.Len()
	if committed == 0 {
		t.Fatal("first batch was not written through")
	}

	f.fail = true
	if err := p.AppendBatch(ctx, rows[2:]); err == nil {
		t.Fatal("expected write failure")
	}
	f.fail = false

	if err := p.AppendBatch(ctx, rows[2:]); !errors.Is(err, ErrWriteFailed) {
		t.Errorf("append after failure = %v, want ErrWriteFailed", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.Len() != committed {
		t.Errorf("close wrote %d more bytes after a failed batch", f.Len()-committed)
	}
	if !f.closed {
		t.Error("underlying file not closed")
	}
}

func TestParquetStoreConfigErrors(t *testing.T) {
	if _, err := NewParquetStore("", "p", ""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := NewParquetStore(filepath.Join(t.TempDir(), "x.parquet"), "p", "lzma"); err == nil {
		t.Error("expected error for unknown compression")
	}
}

type fakeS3 struct {
	puts []*s3.PutObjectInput
	body [][]byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.body = append(f.body, b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreObjectPerBatch(t *testing.T) {
	fake := &fakeS3{}
	s, err := NewS3Store(fake, S3Config{Bucket: "eeg", Prefix: "/raw/"}, "p-3")
	if err != nil {
		t.Fatal(err)
	}
	if err := loader.Ingest(context.Background(), testRows(), 2, s, nil); err != nil {
		t.Fatal(err)
	}
	if len(fake.puts) != 2 {
		t.Fatalf("puts = %d, want 2", len(fake.puts))
	}
	if key := *fake.puts[1].Key; key != "raw/p-3/batch-00001.parquet" {
		t.Errorf("key = %q", key)
	}
	if *fake.puts[0].Bucket != "eeg" || *fake.puts[0].ContentType != "application/parquet" {
		t.Errorf("unexpected put input: %+v", fake.puts[0])
	}

	b := fake.body[1]
	got, err := parquet.Read[Record](bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("decode object: %v", err)
	}
	if want := Stamp("p-3", testRows()[2:]); !reflect.DeepEqual(got, want) {
		t.Errorf("object rows = %+v, want %+v", got, want)
	}
}

func TestS3StoreFailureSurfacesAsBatchError(t *testing.T) {
	cause := errors.New("access denied")
	s, err := NewS3Store(&fakeS3{err: cause}, S3Config{Bucket: "eeg"}, "p")
	if err != nil {
		t.Fatal(err)
	}
	err = loader.Ingest(context.Background(), testRows(), 2, s, nil)
	if !errors.Is(err, loader.ErrBatchSubmission) || !errors.Is(err, cause) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewS3Store(&fakeS3{}, S3Config{}, "p"); err == nil {
		t.Error("expected error for missing bucket")
	}
}

type fakeKafka struct {
	calls  int
	msgs   []kafka.Message
	closed bool
}

func (f *fakeKafka) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.calls++
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeKafka) Close() error {
	f.closed = true
	return nil
}

func TestKafkaStoreMessagePerRow(t *testing.T) {
	fake := &fakeKafka{}
	k := NewKafkaStore(fake, "p-4")
	if err := loader.Ingest(context.Background(), testRows(), 2, k, nil); err != nil {
		t.Fatal(err)
	}
	if fake.calls != 2 || len(fake.msgs) != 3 {
		t.Fatalf("calls=%d msgs=%d", fake.calls, len(fake.msgs))
	}
	if string(fake.msgs[1].Key) != "FP2" {
		t.Errorf("key = %q", fake.msgs[1].Key)
	}
	var rec Record
	if err := json.Unmarshal(fake.msgs[0].Value, &rec); err != nil {
		t.Fatal(err)
	}
	if rec != (Record{ParticipantID: "p-4", Channel: "FP1", Seconds: 0, Voltage: 3.082}) {
		t.Errorf("decoded %+v", rec)
	}
	_ = k.Close()
	if !fake.closed {
		t.Error("writer not closed")
	}
}

func TestNewKafkaWriterValidation(t *testing.T) {
	if _, err := NewKafkaWriter(KafkaConfig{Topic: "eeg"}); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewKafkaWriter(KafkaConfig{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Error("expected error without topic")
	}
	w, err := NewKafkaWriter(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "eeg"})
	if err != nil {
		t.Fatal(err)
	}
	if w.Topic != "eeg" || w.BatchSize != 1000 {
		t.Errorf("writer = %+v", w)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, Config{Kind: "Memory", ParticipantID: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", b)
	}

	b, err = Open(ctx, Config{Kind: KindParquet, Parquet: ParquetConfig{Path: filepath.Join(t.TempDir(), "o.parquet")}})
	if err != nil {
		t.Fatal(err)
	}
	_ = b.Close()

	if _, err := Open(ctx, Config{Kind: "postgres"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Open(postgres) = %v, want ErrUnknownKind", err)
	}
	if _, err := Open(ctx, Config{Kind: KindKafka}); err == nil {
		t.Error("expected kafka config error")
	}
}
