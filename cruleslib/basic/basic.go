/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

/*
This package should not import any other package of the module to avoid
recursive import.
*/
package basic

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/message"
	"golang.org/x/text/transform"
)

// Console receives user-facing progress lines.
var Console io.Writer = os.Stdout

func PrintfWithTimeStamp(format string, arg ...any) {
	prefix := fmt.Sprintf("%v ", time.Now().Format("2006-01-02 15:04:05"))
	message := fmt.Sprintf(prefix+format, arg...)
	fmt.Fprintln(Console, message)
	glog.Info(message)
}

func GetPercentString(v1, v2 int) string {
	if v2 == 0 {
		return "100%"
	}
	return fmt.Sprintf("%d%%", v1*100/v2)
}

// FormatTimeDuration prints d in seconds with at most millisecond precision
// and no trailing zeros, e.g. "3s" or "1.25s".
func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	ms := (d - s*time.Second) / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	frac := strings.TrimRight(fmt.Sprintf("%03d", ms), "0")
	return fmt.Sprintf("%d.%ss", s, frac)
}

// print checking process serialized, goroutine safe
type CheckingProcessPrinter struct {
	mutex           sync.Mutex
	startedAt       time.Time
	timeElapsed     map[string]time.Time
	startedFileNum  int
	finishedFileNum int
	totalFileNum    int
	printer         *message.Printer
}

func NewCheckingProcessPrinter(totalFileNum int, printer *message.Printer) *CheckingProcessPrinter {
	return &CheckingProcessPrinter{
		totalFileNum: totalFileNum,
		timeElapsed:  make(map[string]time.Time),
		startedAt:    time.Now(),
		printer:      printer,
	}
}

// Called before a file is analyzed
func (c *CheckingProcessPrinter) StartFile(file string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.startedFileNum++
	PrintfWithTimeStamp("%s", c.printer.Sprintf("Start analyzing %s (%v/%v)", file, c.startedFileNum, c.totalFileNum))
	c.timeElapsed[file] = time.Now()
}

// Called after a file is analyzed, successfully or not
func (c *CheckingProcessPrinter) FinishFile(file string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	elapsed := time.Since(c.timeElapsed[file])
	delete(c.timeElapsed, file)
	c.finishedFileNum++
	percent := GetPercentString(c.finishedFileNum, c.totalFileNum)
	PrintfWithTimeStamp("%s", c.printer.Sprintf("Analysis of %s completed (%s, %v/%v) [%s]",
		file, percent, c.finishedFileNum, c.totalFileNum, FormatTimeDuration(elapsed)))
}

func isUTF8(charset string) bool {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf8", "utf-8":
		return true
	}
	return false
}

// ConvertCharset decodes b from the named IANA charset into UTF-8. Unknown
// charsets and undecodable input are passed through unchanged.
func ConvertCharset(b []byte, charset string) string {
	if isUTF8(charset) {
		return string(b)
	}
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		glog.Warningf("unknown charset %q, the source is considered as UTF-8", charset)
		return string(b)
	}
	if e == nil {
		glog.Warningf("charset %q has no decoder, the source is considered as UTF-8", charset)
		return string(b)
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), e.NewDecoder()))
	if err != nil {
		glog.Warningf("cannot decode source as %s: %v", charset, err)
		return string(b)
	}
	return string(decoded)
}

// ValidCharset reports whether ConvertCharset can decode the charset.
func ValidCharset(charset string) bool {
	if isUTF8(charset) {
		return true
	}
	e, err := ianaindex.MIME.Encoding(charset)
	return err == nil && e != nil
}

// TarDirectory writes srcDir as a gzipped tarball whose entries are rooted
// at the directory's base name.
func TarDirectory(srcDir string, fileName string) error {
	fw, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("create archive: %v", err)
	}
	defer fw.Close()
	gw := gzip.NewWriter(fw)
	tw := tar.NewWriter(gw)
	err = filepath.Walk(srcDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("get header failed: %v", err)
		}
		hdr.Name, err = filepath.Rel(filepath.Dir(srcDir), path)
		if err != nil {
			return fmt.Errorf("failed to get relative path of %v to %v: %v", path, filepath.Dir(srcDir), err)
		}
		hdr.Name = filepath.ToSlash(hdr.Name)
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write header failed: %v", err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		fr, err := os.Open(path)
		if err != nil {
			return err
		}
		defer fr.Close()
		_, err = io.CopyN(tw, fr, info.Size())
		return err
	})
	if err != nil {
		return fmt.Errorf("archive %s: %v", srcDir, err)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return fw.Close()
}

// ConvertRelativePathToAbsolute resolves path against dir and checks that
// the result exists.
func ConvertRelativePathToAbsolute(dir, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	fullpath := filepath.Join(dir, path)
	if _, err := os.Stat(fullpath); err != nil {
		return path, fmt.Errorf("convertRelativePathToAbsolute: %v", err)
	}
	return fullpath, nil
}
