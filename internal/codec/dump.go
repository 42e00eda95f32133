package codec

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/JakeFAU/tzverify/internal/tz"
)

// BlobStore persists dump files.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
	GetObject(ctx context.Context, path string) ([]byte, error)
}

// Record is one serialized timestamp in a dump file.
type Record struct {
	Key      string   `json:"key"`
	Encoding Encoding `json:"encoding"`
	Value    string   `json:"value"`
}

// EncodeRecord serializes ts under key.
func EncodeRecord(key string, ts tz.Timestamp, enc Encoding) (Record, error) {
	value, err := Encode(ts, enc)
	if err != nil {
		return Record{}, err
	}
	return Record{Key: key, Encoding: enc, Value: value}, nil
}

// DecodeRecord reverses EncodeRecord; see Decode for how zone is used.
func DecodeRecord(env tz.Env, rec Record, zone tz.Zone) (tz.Timestamp, error) {
	ts, err := Decode(env, rec.Value, zone)
	if err != nil {
		return tz.Timestamp{}, fmt.Errorf("record %q: %w", rec.Key, err)
	}
	return ts, nil
}

const dumpContentType = "application/x-ndjson"

// Dump writes records as JSON lines and returns the stored object's URI.
func Dump(ctx context.Context, store BlobStore, path string, records []Record) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("encode record %q: %w", rec.Key, err)
		}
	}
	uri, err := store.PutObject(ctx, path, dumpContentType, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("put dump %s: %w", path, err)
	}
	return uri, nil
}

// Reload reads a dump written by Dump.
func Reload(ctx context.Context, store BlobStore, path string) ([]Record, error) {
	data, err := store.GetObject(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("get dump %s: %w", path, err)
	}
	var records []Record
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode dump line %d: %w", len(records)+1, err)
		}
		if _, err := ParseEncoding(string(rec.Encoding)); err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.Key, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dump %s: %w", path, err)
	}
	return records, nil
}
