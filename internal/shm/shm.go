// Package shm is the shared-memory audio buffer (spec.md §4.3): a single
// POSIX shared-memory object, named from a per-instance random token, that
// both the native side and the worker map read/write for the duration of an
// activate cycle. The native side sizes and creates the segment when
// activate/setBlockSize establishes a block size; the geometry is handed to
// the worker as the Geometry record carried in the activate response, and
// both sides remap whenever activate renegotiates it.
//
// Grounded on doismellburning-samoyed's direct use of golang.org/x/sys/unix
// for low-level POSIX operations (ioctl-based serial/GPIO control in
// src/ptt.go) as the pack's precedent for reaching past the standard library
// straight to unix syscalls rather than wrapping them in another
// abstraction; shm_open/mmap are the same class of direct syscall, applied
// here to shared memory instead of serial lines.
package shm

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/plugbridge/plugbridge/pkg/audio"
)

// SampleSize is fixed at 4 bytes (float32); the geometry record still
// carries it on the wire (spec.md §6) so a future sample format change
// doesn't require a wire schema bump.
const SampleSize = 4

// Geometry is the record transmitted in the activate response (spec.md §6):
// {sample_size: u8, max_frames: u32, inputs: u32, outputs: u32}.
type Geometry struct {
	SampleSize uint8
	MaxFrames  uint32
	Inputs     uint32
	Outputs    uint32
}

// Size returns the total byte size of the segment this geometry describes.
func (g Geometry) Size() int64 {
	return int64(g.Inputs+g.Outputs) * int64(g.MaxFrames) * int64(g.SampleSize)
}

// channels returns the total input+output channel count, for splitting the
// mapped region into per-direction audio.Views.
func (g Geometry) channels() int {
	return int(g.Inputs + g.Outputs)
}

var (
	ErrAlreadyMapped = errors.New("shm: segment already mapped")
	ErrNotMapped     = errors.New("shm: segment not mapped")
)

// Segment owns one mapped POSIX shared-memory region and the two
// audio.Views (input half, output half) carved out of it. Create on the
// native side, Open on the worker side; both call Remap whenever activate
// renegotiates the geometry.
type Segment struct {
	name string
	fd   int
	geom Geometry
	data []byte

	inputs  *audio.View
	outputs *audio.View
}

// segmentPath resolves a shared-memory object name to the path shm_open
// would use on Linux: /dev/shm/<name>. golang.org/x/sys/unix has no
// shm_open wrapper, so the object is created directly under the tmpfs
// mount shm_open targets, which is the standard portable substitute on
// Linux (the only platform this bridge runs its native side on).
func segmentPath(name string) string {
	return "/dev/shm/" + name
}

// Create allocates a new named shared-memory segment sized for geom and
// maps it read/write. Called on the native side when activate/resume
// establishes a block size.
func Create(name string, geom Geometry) (*Segment, error) {
	path := segmentPath(name)
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR|unix.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("shm: create %s: %w", name, err)
	}
	s := &Segment{name: name, fd: fd}
	if err := s.remapLocked(geom); err != nil {
		unix.Close(fd)
		os.Remove(path)
		return nil, err
	}
	return s, nil
}

// Open maps an existing shared-memory segment created by the native side.
// Called on the worker side after receiving the activate response.
func Open(name string, geom Geometry) (*Segment, error) {
	path := segmentPath(name)
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", name, err)
	}
	s := &Segment{name: name, fd: fd}
	if err := s.remapLocked(geom); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return s, nil
}

// Remap unmaps the current region (if any) and maps a new one sized for
// geom, without closing or reopening the underlying fd. Called on both
// sides when activate is called again with different parameters.
func (s *Segment) Remap(geom Geometry) error {
	if s.data != nil {
		if err := unix.Munmap(s.data); err != nil {
			return fmt.Errorf("shm: munmap %s: %w", s.name, err)
		}
		s.data = nil
	}
	return s.remapLocked(geom)
}

func (s *Segment) remapLocked(geom Geometry) error {
	size := geom.Size()
	if size <= 0 {
		return fmt.Errorf("shm: invalid geometry %+v", geom)
	}
	if err := unix.Ftruncate(s.fd, size); err != nil {
		return fmt.Errorf("shm: ftruncate %s to %d: %w", s.name, size, err)
	}
	data, err := unix.Mmap(s.fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("shm: mmap %s: %w", s.name, err)
	}
	s.data = data
	s.geom = geom

	inputBytes := audio.PlanarSize(int(geom.Inputs), int(geom.MaxFrames))
	outputBytes := audio.PlanarSize(int(geom.Outputs), int(geom.MaxFrames))
	s.inputs, err = audio.NewView(data[:inputBytes], int(geom.Inputs), int(geom.MaxFrames))
	if err != nil {
		return fmt.Errorf("shm: input view: %w", err)
	}
	s.outputs, err = audio.NewView(data[inputBytes:inputBytes+outputBytes], int(geom.Outputs), int(geom.MaxFrames))
	if err != nil {
		return fmt.Errorf("shm: output view: %w", err)
	}
	return nil
}

// Inputs returns the view over the segment's input half. Valid until the
// next Remap or Close.
func (s *Segment) Inputs() (*audio.View, error) {
	if s.inputs == nil {
		return nil, ErrNotMapped
	}
	return s.inputs, nil
}

// Outputs returns the view over the segment's output half. Valid until the
// next Remap or Close.
func (s *Segment) Outputs() (*audio.View, error) {
	if s.outputs == nil {
		return nil, ErrNotMapped
	}
	return s.outputs, nil
}

// Geometry reports the segment's current negotiated geometry.
func (s *Segment) Geometry() Geometry {
	return s.geom
}

// Name returns the token this segment was created or opened under, for
// inclusion in the activate response or the worker's connect handshake.
func (s *Segment) Name() string {
	return s.name
}

// Close unmaps the region and closes the fd; Close(true) also unlinks the
// backing file. The native side's Instance.Close and the worker's
// host-death handler both pass true.
func (s *Segment) Close(unlink bool) error {
	var errs []error
	if s.data != nil {
		if err := unix.Munmap(s.data); err != nil {
			errs = append(errs, err)
		}
		s.data = nil
	}
	if err := unix.Close(s.fd); err != nil {
		errs = append(errs, err)
	}
	if unlink {
		if err := os.Remove(segmentPath(s.name)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
