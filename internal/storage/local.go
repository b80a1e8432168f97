package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
	"github.com/rohmanhakim/store-insights/pkg/fileutil"
	"github.com/rohmanhakim/store-insights/pkg/hashutil"
)

// domainKeyLength is the number of hex characters of the domain hash used
// as the file name.
const domainKeyLength = 12

// LocalSink writes each document as <outputDir>/<domain hash>.json.
type LocalSink struct {
	metadataSink metadata.MetadataSink
	outputDir    string
	hashAlgo     hashutil.HashAlgo
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
	outputDir string,
) *LocalSink {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &LocalSink{
		metadataSink: metadataSink,
		outputDir:    outputDir,
		hashAlgo:     hashutil.HashAlgoBLAKE3,
	}
}

// Path returns the file a document for domain is written to.
func (s *LocalSink) Path(domain string) (string, error) {
	key, err := DomainKey(domain, s.hashAlgo)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.outputDir, key+".json"), nil
}

func (s *LocalSink) Write(ctx context.Context, doc insight.Document) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}
	result, err := s.write(doc)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrDomain, doc.Domain),
				metadata.NewAttr(metadata.AttrWritePath, err.Path),
			},
		)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactDocument,
		result.Location(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, result.Location()),
			metadata.NewAttr(metadata.AttrDomain, doc.Domain),
		},
	)
	return result, nil
}

func (s *LocalSink) write(doc insight.Document) (WriteResult, *StorageError) {
	key, err := DomainKey(doc.Domain, s.hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailure,
		}
	}

	if dirErr := fileutil.EnsureDir(s.outputDir); dirErr != nil {
		return WriteResult{}, &StorageError{
			Message:   dirErr.Error(),
			Retryable: true,
			Cause:     ErrCausePathError,
			Path:      s.outputDir,
		}
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailure,
		}
	}
	payload = append(payload, '\n')

	fullPath := filepath.Join(s.outputDir, key+".json")
	if writeErr := fileutil.WriteFileAtomic(fullPath, payload, 0644); writeErr != nil {
		cause := ErrCauseWriteFailure
		if strings.Contains(writeErr.Error(), syscall.ENOSPC.Error()) {
			cause = ErrCauseDiskFull
		}
		return WriteResult{}, &StorageError{
			Message:   writeErr.Error(),
			Retryable: writeErr.Severity() == failure.SeverityRecoverable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	return NewWriteResult(key, fullPath, doc.Fingerprint), nil
}

// DomainKey is the stable file key of a storefront domain.
func DomainKey(domain string, algo hashutil.HashAlgo) (string, error) {
	digest, err := hashutil.HashBytes([]byte(domain), algo)
	if err != nil {
		return "", err
	}
	return hashutil.Short(digest, domainKeyLength), nil
}
