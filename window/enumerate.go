package window

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"github.com/soocke/wincapture/winapi"
)

const maxTextUnits = 256

// Enumerate iterates top-level windows via the find-window-ex sibling
// traversal: no parent, starting from no prior child, then continuing from
// the previous handle, terminating on null — per spec.md §4.D. Invisible
// windows are skipped. Enumeration order matches live OS sibling order; no
// sort is imposed.
//
// Grounded on the EnumWindows-callback style in the retrieved
// MKSO4KA-GoWinScreenSender example, adapted to the explicit sibling walk
// spec.md requires instead of a single batch callback.
func (w *Window) Enumerate() ([]Info, error) {
	var infos []Info
	var prev uintptr

	for {
		next := w.bindings.FindWindowExW(0, prev, nil, nil)
		if next == 0 {
			break
		}
		prev = next

		if w.bindings.IsWindowVisible(next) == 0 {
			continue
		}

		info, err := w.describe(next)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// Resolve maps id to a handle. For ByHandle it is returned unchanged with
// no validation (a caller holding a handle is trusted). For the other three
// kinds, it walks the same sibling order as Enumerate, testing only visible
// windows, and returns the first case-sensitive exact match.
func (w *Window) Resolve(id Identifier) (Handle, error) {
	if id.Kind == ByHandle {
		return id.Handle, nil
	}

	var prev uintptr
	for {
		next := w.bindings.FindWindowExW(0, prev, nil, nil)
		if next == 0 {
			break
		}
		prev = next

		if w.bindings.IsWindowVisible(next) == 0 {
			continue
		}

		if w.matches(next, id) {
			return Handle(next), nil
		}
	}

	return 0, fmt.Errorf("window: resolve %+v: %w", id, ErrWindowNotFound)
}

func (w *Window) matches(hwnd uintptr, id Identifier) bool {
	switch id.Kind {
	case ByTitle:
		title, _ := w.readText(hwnd, w.bindings.GetWindowTextW)
		return title == id.Title
	case ByClassName:
		class, _ := w.readText(hwnd, w.bindings.GetClassNameW)
		return class == id.ClassName
	case ByProcessID:
		var pid uint32
		w.bindings.GetWindowThreadProcessId(hwnd, unsafe.Pointer(&pid))
		return pid == id.ProcessID
	default:
		return false
	}
}

func (w *Window) describe(hwnd uintptr) (Info, error) {
	title, _ := w.readText(hwnd, w.bindings.GetWindowTextW)

	class, n := w.readText(hwnd, w.bindings.GetClassNameW)
	if n == 0 {
		return Info{}, fmt.Errorf("window: class name for %x: %w", hwnd, ErrClassNameUnavailable)
	}

	var pid uint32
	w.bindings.GetWindowThreadProcessId(hwnd, unsafe.Pointer(&pid))
	if pid == 0 {
		return Info{}, fmt.Errorf("window: process id for %x: %w", hwnd, ErrProcessIDUnavailable)
	}

	styleBits := w.bindings.GetWindowLongW(hwnd, winapi.GWLStyle)
	if styleBits == 0 {
		return Info{}, fmt.Errorf("window: style for %x: %w", hwnd, ErrStyleUnavailable)
	}

	rect, err := w.windowRectForHandle(Handle(hwnd))
	if err != nil {
		return Info{}, err
	}

	return Info{
		Handle:    Handle(hwnd),
		Title:     title,
		ClassName: class,
		ProcessID: pid,
		Position:  rect,
		Style:     styleFromBits(styleBits),
	}, nil
}

// readText reads a UTF-16 string via reader into a 256-unit buffer,
// truncating at the first NUL or 256 code units, whichever comes first. An
// empty return is permitted and produces an empty string with n == 0.
func (w *Window) readText(hwnd uintptr, reader func(hwnd uintptr, buf *uint16, maxCount int32) int32) (string, int32) {
	buf := make([]uint16, maxTextUnits)
	n := reader(hwnd, &buf[0], maxTextUnits)
	if n <= 0 {
		return "", 0
	}
	return utf16ToString(buf[:n]), n
}

func utf16ToString(buf []uint16) string {
	for i, u := range buf {
		if u == 0 {
			buf = buf[:i]
			break
		}
	}
	return string(utf16.Decode(buf))
}
