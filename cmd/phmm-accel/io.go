package main

import (
	"context"
	"encoding/gob"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/seed"
)

// readGob reads and gob-decodes a path-transparent input, local or s3://,
// the same grailbio/base/file abstraction interval.NewBEDUnionFromPath uses
// so this repository never needs a direct aws-sdk-go import for S3 access.
// This CLI carries no HMMER/FASTA text-format parser of its own (hmmprofile
// is documented as the interface to that external parsing layer, not a
// parser); it reads the already-decoded Profile/Sequence/Trace shape
// instead, which is enough to demonstrate pipeline.Run end to end.
func readGob(ctx context.Context, path string, v interface{}) error {
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "phmm-accel: opening %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	if err := gob.NewDecoder(f.Reader(ctx)).Decode(v); err != nil {
		return errors.Wrapf(err, "phmm-accel: decoding %s", path)
	}
	return nil
}

func loadProfile(ctx context.Context, path string) (*hmmprofile.Profile, error) {
	p := &hmmprofile.Profile{}
	if err := readGob(ctx, path, p); err != nil {
		return nil, err
	}
	return p, nil
}

func loadSequence(ctx context.Context, path string) (*hmmprofile.Sequence, error) {
	s := &hmmprofile.Sequence{}
	if err := readGob(ctx, path, s); err != nil {
		return nil, err
	}
	return s, nil
}

func loadSeed(ctx context.Context, path string) (*seed.Trace, error) {
	tr := &seed.Trace{}
	if err := readGob(ctx, path, tr); err != nil {
		return nil, err
	}
	return tr, nil
}
