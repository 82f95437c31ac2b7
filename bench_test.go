package sshlines

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func BenchmarkFindEOL(b *testing.B) {
	data := hostOutput("web1", 10_000, "\r\n")
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	var count int
	for i := 0; i < b.N; i++ {
		count = 0
		pos := 0
		for {
			eol, ok := FindEOL(data, pos)
			if !ok {
				break
			}
			pos = eol.Next(pos)
			count++
		}
	}
	require.Equal(b, 10_000, count)
}

func Benchmark_objReader(b *testing.B) {
	data := hostOutput("web1", 10_000, "\n")
	gz := gzipBytes(b, data)
	brdr := bytes.NewReader(gz)
	ctx := context.Background()
	o := new(objReader)
	var count int
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		brdr.Reset(gz)
		err := o.Reset(brdr, true)
		if err != nil {
			b.Fatal(err)
		}
		count = 0
		scanner := NewScanner(o, "bench", nil)
		for scanner.Scan(ctx) {
			count++
		}
		require.NoError(b, scanner.Err())
	}
	require.Equal(b, 10_000, count)
}
