package cmd

import (
	"io"
	"os"
)

var (
	outWriterFunc = func() io.Writer { return os.Stdout }
	errWriterFunc = func() io.Writer { return os.Stderr }
	inReaderFunc  = func() io.Reader { return os.Stdin }
)

func init() {
	outWriterFunc = func() io.Writer { return rootCmd.OutOrStdout() }
	errWriterFunc = func() io.Writer { return rootCmd.ErrOrStderr() }
	inReaderFunc = func() io.Reader { return rootCmd.InOrStdin() }
}

// outWriter receives results meant for pipes: generated messages, branch lists, config dumps.
func outWriter() io.Writer {
	return outWriterFunc()
}

// errWriter receives prompts, status lines and diagnostics.
func errWriter() io.Writer {
	return errWriterFunc()
}

func inReader() io.Reader {
	return inReaderFunc()
}
