package backup

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/caian-org/s1o/internal/errs"
)

// Entry is one file bundled into (or restored out of) an archive: Path is
// the absolute path the file lives at (Snapshot) or should be written to
// (Restore), and Name is the identifier stored in the archive so Restore
// doesn't have to agree with Snapshot on absolute paths.
type Entry struct {
	Path string
	Name string
}

const magic = "s1ob"

// Snapshot reads every entry in full, frames it as (name length, name,
// content length, content), compresses the resulting stream with codec,
// and uploads it to target under key. Entries missing on disk (e.g. a
// dataset opened with NoData) are skipped rather than failing the whole
// snapshot.
func Snapshot(ctx context.Context, entries []Entry, codec Codec, target Target, key string) error {
	pr, pw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- target.Put(ctx, key, pr)
	}()

	err := writeArchive(pw, entries, codec)
	closeErr := pw.Close()
	if err == nil {
		err = closeErr
	}

	if upErr := <-done; err == nil {
		err = upErr
	}
	return err
}

func writeArchive(w io.Writer, entries []Entry, codec Codec) error {
	cw, err := codec.Compress(w)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(cw, magic); err != nil {
		cw.Close()
		return err
	}

	for _, e := range entries {
		f, err := os.Open(e.Path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			cw.Close()
			return err
		}

		info, err := f.Stat()
		if err != nil {
			f.Close()
			cw.Close()
			return err
		}

		if err := writeFrame(cw, e.Name, f, info.Size()); err != nil {
			f.Close()
			cw.Close()
			return err
		}
		f.Close()
	}

	return cw.Close()
}

func writeFrame(w io.Writer, name string, r io.Reader, size int64) error {
	var header [4 + 8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(name)))
	if _, err := w.Write(header[0:4]); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(header[4:12], uint64(size))
	if _, err := w.Write(header[4:12]); err != nil {
		return err
	}
	_, err := io.CopyN(w, r, size)
	return err
}

// Restore downloads the archive under key from target, decompresses it
// with codec, and writes each entry to the Path named in entries whose
// Name matches one found in the archive. Archive entries with no matching
// Name in entries are rejected as unknown_entry, since restoring an
// unrequested file would write outside the caller's intended basepath.
func Restore(ctx context.Context, entries []Entry, codec Codec, target Target, key string) error {
	rc, err := target.Get(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	dr, err := codec.Decompress(rc)
	if err != nil {
		return err
	}
	defer dr.Close()

	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		byName[e.Name] = e.Path
	}

	var gotMagic [len(magic)]byte
	if _, err := io.ReadFull(dr, gotMagic[:]); err != nil {
		return &errs.BackupError{Kind: errs.KindArchiveTruncated, Key: key}
	}
	if string(gotMagic[:]) != magic {
		return &errs.BackupError{Kind: errs.KindArchiveCorrupt, Key: key}
	}

	for {
		name, size, err := readFrameHeader(dr)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		path, ok := byName[name]
		if !ok {
			return &errs.BackupError{Kind: errs.KindUnknownEntry, Key: key, Entry: name}
		}

		if err := restoreFrame(path, dr, size); err != nil {
			return err
		}
	}
}

func readFrameHeader(r io.Reader) (name string, size int64, err error) {
	var nameLen [4]byte
	if _, err := io.ReadFull(r, nameLen[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return "", 0, err
	}

	nameBuf := make([]byte, binary.LittleEndian.Uint32(nameLen[:]))
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return "", 0, &errs.BackupError{Kind: errs.KindArchiveTruncated}
	}

	var sizeBuf [8]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return "", 0, &errs.BackupError{Kind: errs.KindArchiveTruncated, Entry: string(nameBuf)}
	}

	return string(nameBuf), int64(binary.LittleEndian.Uint64(sizeBuf[:])), nil
}

func restoreFrame(path string, r io.Reader, size int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(f, r, size); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
