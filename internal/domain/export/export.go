package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the artifact types the service produces.
type Kind string

const (
	KindHourlyCSV  Kind = "hourly-csv"
	KindConfigJSON Kind = "config-json"
)

// ContentType returns the MIME type served for the kind.
func (k Kind) ContentType() string {
	if k == KindConfigJSON {
		return "application/json"
	}
	return "text/csv"
}

func (k Kind) extension() string {
	if k == KindConfigJSON {
		return "json"
	}
	return "csv"
}

// Key locates an archived artifact. Every key embeds its owner and kind:
// exports/<userID>/<kind>-<uuid>.<ext>. Storage backends derive object
// metadata from the key, and a fetch is refused when the key belongs to a
// different user.
type Key string

const keyPrefix = "exports/"

var errMalformedKey = errors.New("malformed artifact key")

// NewKey mints a key for an artifact owned by userID.
func NewKey(userID int64, kind Kind) Key {
	return Key(fmt.Sprintf("%s%d/%s-%s.%s", keyPrefix, userID, kind, uuid.NewString(), kind.extension()))
}

// ParseKey checks a raw key against the archive's key scheme.
func ParseKey(raw string) (Key, error) {
	key := Key(raw)
	if err := key.Validate(); err != nil {
		return "", err
	}
	return key, nil
}

// Validate reports an error unless the key follows the archive's key scheme.
func (k Key) Validate() error {
	_, _, err := k.parts()
	return err
}

// UserID returns the owning user, or zero for a malformed key.
func (k Key) UserID() int64 {
	userID, _, _ := k.parts()
	return userID
}

// Kind returns the artifact kind encoded in the key.
func (k Key) Kind() Kind {
	_, kind, _ := k.parts()
	return kind
}

// OwnedBy reports whether the key belongs to userID.
func (k Key) OwnedBy(userID int64) bool {
	owner, _, err := k.parts()
	return err == nil && owner == userID
}

func (k Key) String() string { return string(k) }

func (k Key) parts() (int64, Kind, error) {
	rest, ok := strings.CutPrefix(string(k), keyPrefix)
	if !ok {
		return 0, "", errMalformedKey
	}
	owner, name, ok := strings.Cut(rest, "/")
	if !ok || strings.Contains(name, "/") {
		return 0, "", errMalformedKey
	}
	userID, err := strconv.ParseInt(owner, 10, 64)
	if err != nil || userID <= 0 {
		return 0, "", errMalformedKey
	}
	for _, kind := range []Kind{KindHourlyCSV, KindConfigJSON} {
		if strings.HasPrefix(name, string(kind)+"-") && strings.HasSuffix(name, "."+kind.extension()) {
			return userID, kind, nil
		}
	}
	return 0, "", errMalformedKey
}

// ObjectStorage persists artifacts under their archive keys. Object content
// type and metadata derive from the key, never from the caller.
type ObjectStorage interface {
	Put(ctx context.Context, key Key, data []byte) (StoredObject, error)
	Get(ctx context.Context, key Key) (io.ReadCloser, error)
	Delete(ctx context.Context, key Key) error
}

// StoredObject captures persisted artifact metadata.
type StoredObject struct {
	Key  Key
	Size int64
	ETag string
}

// Artifact describes an archived export returned to the caller.
type Artifact struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
