package daos

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// writeArtifact copies src to dst, xz-compressing when compress is set, and returns
// the BLAKE3 checksum and size of the bytes written to dst.
func writeArtifact(src, dst string, compress bool) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", 0, err
	}

	hasher := blake3.New()
	counter := &countingWriter{}
	w := io.MultiWriter(out, hasher, counter)

	if compress {
		xw, err := xz.NewWriter(w)
		if err != nil {
			out.Close()
			return "", 0, err
		}
		if _, err := io.Copy(xw, in); err != nil {
			out.Close()
			return "", 0, err
		}
		if err := xw.Close(); err != nil {
			out.Close()
			return "", 0, err
		}
	} else if _, err := io.Copy(w, in); err != nil {
		out.Close()
		return "", 0, err
	}

	if err := out.Close(); err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(hasher.Sum(nil)), counter.n, nil
}

// restoreArtifact writes the contents of a backup artifact over dst.
// The file is staged next to dst and renamed into place.
func restoreArtifact(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	var r io.Reader = in
	if strings.HasSuffix(src, XZSuffix) {
		xr, err := xz.NewReader(in)
		if err != nil {
			return err
		}
		r = xr
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".restore-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

// checksumFile returns the BLAKE3 checksum and size of a file.
func checksumFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	hasher := blake3.New()
	n, err := io.Copy(hasher, f)
	if err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
