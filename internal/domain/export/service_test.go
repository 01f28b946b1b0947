package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type memoryStorage struct {
	objects map[Key][]byte
	gets    int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[Key][]byte)}
}

func (m *memoryStorage) Put(ctx context.Context, key Key, data []byte) (StoredObject, error) {
	if err := key.Validate(); err != nil {
		return StoredObject{}, err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = stored
	return StoredObject{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryStorage) Get(ctx context.Context, key Key) (io.ReadCloser, error) {
	m.gets++
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("artifact not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) Delete(ctx context.Context, key Key) error {
	delete(m.objects, key)
	return nil
}

func TestService_ArchiveAndFetch(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewService(storage, newTestLogger())

	data := []byte("timestamp,ac_kwh\n2024-01-01T00:00:00Z,0\n")
	artifact, err := svc.Archive(context.Background(), 7, KindHourlyCSV, data)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(artifact.Key, "exports/7/hourly-csv-"))
	require.True(t, strings.HasSuffix(artifact.Key, ".csv"))
	require.Equal(t, int64(len(data)), artifact.Size)
	require.Equal(t, "text/csv", artifact.ContentType)

	got, contentType, err := svc.Fetch(context.Background(), 7, artifact.Key)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.Equal(t, "text/csv", contentType)
}

func TestService_ArchiveConfigJSON(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewService(storage, newTestLogger())

	artifact, err := svc.Archive(context.Background(), 7, KindConfigJSON, []byte(`{"capacityKw":5}`))
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(artifact.Key, ".json"))
	require.Equal(t, "application/json", artifact.ContentType)

	_, contentType, err := svc.Fetch(context.Background(), 7, artifact.Key)
	require.NoError(t, err)
	require.Equal(t, "application/json", contentType)
}

func TestService_ArchiveKeysAreUnique(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewService(storage, newTestLogger())

	first, err := svc.Archive(context.Background(), 7, KindHourlyCSV, []byte("a"))
	require.NoError(t, err)
	second, err := svc.Archive(context.Background(), 7, KindHourlyCSV, []byte("b"))
	require.NoError(t, err)

	require.NotEqual(t, first.Key, second.Key)
	require.Len(t, storage.objects, 2)
}

func TestService_ArchiveDisabled(t *testing.T) {
	svc := NewService(nil, newTestLogger())

	_, err := svc.Archive(context.Background(), 7, KindHourlyCSV, []byte("data"))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "archive_disabled"))

	_, _, err = svc.Fetch(context.Background(), 7, "exports/7/whatever.csv")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "archive_disabled"))
}

func TestService_ArchiveEmptyPayload(t *testing.T) {
	svc := NewService(newMemoryStorage(), newTestLogger())

	_, err := svc.Archive(context.Background(), 7, KindHourlyCSV, nil)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_ArchiveWithoutUser(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewService(storage, newTestLogger())

	_, err := svc.Archive(context.Background(), 0, KindHourlyCSV, []byte("data"))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
	require.Empty(t, storage.objects)
}

func TestService_FetchMissingKey(t *testing.T) {
	svc := NewService(newMemoryStorage(), newTestLogger())

	missing := NewKey(7, KindHourlyCSV)
	_, _, err := svc.Fetch(context.Background(), 7, missing.String())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "export_not_found"))
}

func TestService_FetchForeignKey(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewService(storage, newTestLogger())

	artifact, err := svc.Archive(context.Background(), 7, KindHourlyCSV, []byte("data"))
	require.NoError(t, err)

	// Another user's fetch never reaches storage.
	_, _, err = svc.Fetch(context.Background(), 9, artifact.Key)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "export_not_found"))
	require.Zero(t, storage.gets)
}

func TestService_FetchMalformedKey(t *testing.T) {
	storage := newMemoryStorage()
	svc := NewService(storage, newTestLogger())

	for _, raw := range []string{"", "hourly.csv", "exports/7/notes.txt", "../../etc/passwd"} {
		_, _, err := svc.Fetch(context.Background(), 7, raw)
		require.Error(t, err, raw)
		require.True(t, apperrors.IsCode(err, "export_not_found"), raw)
	}
	require.Zero(t, storage.gets)
}
