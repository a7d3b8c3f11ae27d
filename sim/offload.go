package sim

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// offloadFieldOrder is the fixed, positional order the binary chunk format
// writes its thirteen arrays in. There is no header: a reader must already
// know W, H and the chunk's Z range (the caller always does, from the
// WaveFieldChunk it is reloading into).
func offloadFieldOrder(c *WaveFieldChunk) [][]float32 {
	return [][]float32{
		c.Vx, c.Vy, c.Vz,
		c.Sxx, c.Syy, c.Szz,
		c.Sxy, c.Sxz, c.Syz,
		c.Damage,
		c.MaxAbsVx, c.MaxAbsVy, c.MaxAbsVz,
	}
}

func offloadPath(dir string, startZ int) string {
	return filepath.Join(dir, fmt.Sprintf("chunk_%d.tmp", startZ))
}

// offloadChunk writes all thirteen arrays, in offloadFieldOrder, as raw
// little-endian float32 bytes to chunk_<StartZ>.tmp, then releases the
// chunk's arrays. On any I/O error the chunk is left resident and an
// *IoFailure is returned; the caller decides whether to keep it resident.
func offloadChunk(c *WaveFieldChunk, dir string) error {
	path := offloadPath(dir, c.StartZ)
	f, err := os.Create(path)
	if err != nil {
		return &IoFailure{StartZ: c.StartZ, EndZ: c.EndZ, Op: "offload", Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, arr := range offloadFieldOrder(c) {
		if err := binary.Write(w, binary.LittleEndian, arr); err != nil {
			return &IoFailure{StartZ: c.StartZ, EndZ: c.EndZ, Op: "offload", Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &IoFailure{StartZ: c.StartZ, EndZ: c.EndZ, Op: "offload", Err: err}
	}

	c.OffloadPath = path
	c.release()
	return nil
}

// reloadChunk allocates the chunk's arrays and reads them back in
// offloadFieldOrder from its OffloadPath. A missing file is an IoFailure;
// the chunk is left non-resident in that case (spec.md §4.1: "it is an
// error condition surfaced to the caller").
func reloadChunk(c *WaveFieldChunk) error {
	if c.OffloadPath == "" {
		return &IoFailure{StartZ: c.StartZ, EndZ: c.EndZ, Op: "reload", Err: fmt.Errorf("no offload path recorded")}
	}
	f, err := os.Open(c.OffloadPath)
	if err != nil {
		return &IoFailure{StartZ: c.StartZ, EndZ: c.EndZ, Op: "reload", Err: err}
	}
	defer f.Close()

	c.allocate()
	r := bufio.NewReader(f)
	for _, arr := range offloadFieldOrder(c) {
		if err := binary.Read(r, binary.LittleEndian, arr); err != nil && err != io.EOF {
			c.release()
			return &IoFailure{StartZ: c.StartZ, EndZ: c.EndZ, Op: "reload", Err: err}
		}
	}
	c.OffloadPath = ""
	return nil
}

// deleteScratch removes every chunk's offload file, ignoring files that are
// already missing (or were never written because the chunk stayed
// resident for the whole run).
func deleteScratch(dir string, chunks []*WaveFieldChunk) {
	for _, c := range chunks {
		path := offloadPath(dir, c.StartZ)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			// Best-effort cleanup; a stray scratch file is not fatal to the
			// caller. The error is dropped here and not reported anywhere.
			_ = err
		}
	}
}
