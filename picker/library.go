package picker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/term"
)

// TermLibrary lets the user choose an image from Dir with the arrow keys.
// The terminal must be released by any full-screen UI before calling it.
type TermLibrary struct {
	Dir string
	In  *os.File
	Out io.Writer
}

func NewTermLibrary(dir string) *TermLibrary {
	return &TermLibrary{Dir: dir, In: os.Stdin, Out: os.Stdout}
}

// ListImages returns image files directly under dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsImage(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})
	return files, nil
}

// pageBounds returns the half-open range of the n entries to show in
// rows lines so that cursor stays visible.
func pageBounds(n, cursor, rows int) (start, end int) {
	if rows < 1 {
		rows = 1
	}
	if n <= rows {
		return 0, n
	}
	start = cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

// listRows is how many entries fit below the header and above the
// position indicator.
func listRows(height int) int {
	if height <= 0 {
		height = 24
	}
	if rows := height - 4; rows > 0 {
		return rows
	}
	return 1
}

// renderList draws the chooser page and returns the number of lines written.
func renderList(out io.Writer, dir string, files []string, cursor, rows int) int {
	fmt.Fprint(out, "\r\x1b[J")
	fmt.Fprintf(out, "Select image from %s (↑/↓, Enter to open, Esc to cancel):\r\n\r\n", dir)
	lines := 2
	start, end := pageBounds(len(files), cursor, rows)
	for i := start; i < end; i++ {
		name := filepath.Base(files[i])
		if i == cursor {
			fmt.Fprintf(out, "  \x1b[1;36m▶ %s\x1b[0m\r\n", name)
		} else {
			fmt.Fprintf(out, "    %s\r\n", name)
		}
		lines++
	}
	if end-start < len(files) {
		fmt.Fprintf(out, "    (%d/%d)\r\n", cursor+1, len(files))
		lines++
	}
	return lines
}

type keyRead struct {
	buf []byte
	err error
}

func (l *TermLibrary) readKeys(done <-chan struct{}) <-chan keyRead {
	keys := make(chan keyRead)
	go func() {
		for {
			buf := make([]byte, 3)
			n, err := l.In.Read(buf)
			select {
			case keys <- keyRead{buf: buf[:n], err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return keys
}

func (l *TermLibrary) PickFromLibrary(ctx context.Context, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if opts.MediaType != "" && opts.MediaType != "photo" {
		return Result{}, fmt.Errorf("unsupported media type %q", opts.MediaType)
	}

	files, err := ListImages(l.Dir)
	if err != nil {
		return Result{}, err
	}
	if len(files) == 0 {
		return Result{}, fmt.Errorf("no images found in %s", l.Dir)
	}

	// Raw mode for arrow key input
	fd := int(l.In.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return Result{}, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	_, height, _ := term.GetSize(fd)
	rows := listRows(height)

	out := l.Out
	cursor := 0
	drawn := renderList(out, l.Dir, files, cursor, rows)

	done := make(chan struct{})
	defer close(done)
	keys := l.readKeys(done)

	for {
		var k keyRead
		select {
		case <-ctx.Done():
			fmt.Fprint(out, "\r\n")
			return Result{}, ctx.Err()
		case k = <-keys:
		}
		if k.err != nil {
			return Result{}, fmt.Errorf("reading input: %w", k.err)
		}

		buf := k.buf
		if len(buf) == 1 {
			switch buf[0] {
			case 13: // Enter
				fmt.Fprint(out, "\r\n")
				return Single(files[cursor])
			case 3, 27, 'q': // Ctrl+C, Esc
				fmt.Fprint(out, "\r\n")
				return Cancelled, nil
			case 'j':
				if cursor < len(files)-1 {
					cursor++
				}
			case 'k':
				if cursor > 0 {
					cursor--
				}
			}
		} else if len(buf) == 3 && buf[0] == 0x1b && buf[1] == '[' {
			switch buf[2] {
			case 'A': // Up arrow
				if cursor > 0 {
					cursor--
				}
			case 'B': // Down arrow
				if cursor < len(files)-1 {
					cursor++
				}
			}
		}

		fmt.Fprintf(out, "\x1b[%dA", drawn)
		drawn = renderList(out, l.Dir, files, cursor, rows)
	}
}
