package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"hoopla/pkg/errs"
	"hoopla/pkg/indexer"
	"hoopla/pkg/utils/binary"
)

const (
	ArtifactIndex    = "index"
	ArtifactDocMap   = "docmap"
	ArtifactTermFreq = "termfreq"
	ArtifactManifest = "manifest"

	magic         = "HOOPLA"
	formatVersion = 1
)

// Artifacts lists the snapshot artifacts in write order. The manifest is
// last: a snapshot without a manifest does not exist yet.
var Artifacts = []string{ArtifactIndex, ArtifactDocMap, ArtifactTermFreq, ArtifactManifest}

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrBadHeader        = errors.New("bad artifact header")
	ErrBuildMismatch    = errors.New("artifact belongs to another build")
)

type Manifest struct {
	BuildID   string
	CreatedAt time.Time
	Docs      int
	Terms     int
}

type Artifact struct {
	Name string
	Data []byte
}

// EncodeSnapshot serialises each table behind a header carrying the build id.
func EncodeSnapshot(snap *indexer.Snapshot) ([]Artifact, error) {
	payloads := map[string]any{
		ArtifactIndex:    snap.Index,
		ArtifactDocMap:   snap.Docs,
		ArtifactTermFreq: snap.Freqs,
		ArtifactManifest: Manifest{
			BuildID:   snap.BuildID,
			CreatedAt: time.Now().UTC(),
			Docs:      len(snap.Docs),
			Terms:     len(snap.Index),
		},
	}

	artifacts := make([]Artifact, 0, len(Artifacts))
	for _, name := range Artifacts {
		var buf bytes.Buffer
		if err := writeArtifact(&buf, name, snap.BuildID, payloads[name]); err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		artifacts = append(artifacts, Artifact{Name: name, Data: buf.Bytes()})
	}
	return artifacts, nil
}

// DecodeSnapshot reads the manifest and the three tables through get. Any
// failure comes back as *errs.MissingIndexError.
func DecodeSnapshot(get func(name string) ([]byte, error)) (*indexer.Snapshot, *Manifest, error) {
	var manifest Manifest
	buildID, err := readArtifact(get, ArtifactManifest, &manifest)
	if err != nil {
		return nil, nil, err
	}
	if manifest.BuildID != buildID {
		return nil, nil, errs.Corrupt(ArtifactManifest, ErrBuildMismatch)
	}

	snap := &indexer.Snapshot{BuildID: buildID}
	tables := []struct {
		name string
		dst  any
	}{
		{ArtifactIndex, &snap.Index},
		{ArtifactDocMap, &snap.Docs},
		{ArtifactTermFreq, &snap.Freqs},
	}
	for _, table := range tables {
		id, err := readArtifact(get, table.name, table.dst)
		if err != nil {
			return nil, nil, err
		}
		if id != buildID {
			return nil, nil, errs.Corrupt(table.name, fmt.Errorf("%w: %s, manifest %s", ErrBuildMismatch, id, buildID))
		}
	}

	if snap.Index == nil {
		snap.Index = indexer.InvertedIndex{}
	}
	if snap.Docs == nil {
		snap.Docs = indexer.DocMap{}
	}
	if snap.Freqs == nil {
		snap.Freqs = indexer.TermFreqs{}
	}
	if err := snap.Validate(); err != nil {
		return nil, nil, errs.Corrupt("", err)
	}
	return snap, &manifest, nil
}

func writeArtifact(buf *bytes.Buffer, name, buildID string, payload any) error {
	bw := binary.NewByteWriter(buf)
	if err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := bw.WriteString(name); err != nil {
		return err
	}
	if err := bw.WriteInt(formatVersion); err != nil {
		return err
	}
	if err := bw.WriteString(buildID); err != nil {
		return err
	}
	return gob.NewEncoder(buf).Encode(payload)
}

func readArtifact(get func(name string) ([]byte, error), name string, payload any) (string, error) {
	data, err := get(name)
	if errors.Is(err, ErrArtifactNotFound) {
		return "", errs.Absent(name, err)
	}
	if err != nil {
		return "", errs.Corrupt(name, err)
	}

	br := binary.NewByteReader(bytes.NewReader(data))
	if m, err := br.ReadString(); err != nil || m != magic {
		return "", errs.Corrupt(name, ErrBadHeader)
	}
	if n, err := br.ReadString(); err != nil || n != name {
		return "", errs.Corrupt(name, fmt.Errorf("%w: artifact name %q", ErrBadHeader, n))
	}
	if v, err := br.ReadInt(); err != nil || v != formatVersion {
		return "", errs.Corrupt(name, fmt.Errorf("%w: format version %d", ErrBadHeader, v))
	}
	buildID, err := br.ReadString()
	if err != nil {
		return "", errs.Corrupt(name, ErrBadHeader)
	}
	if err := gob.NewDecoder(br.Reader()).Decode(payload); err != nil {
		return "", errs.Corrupt(name, err)
	}
	return buildID, nil
}
