package pinfile_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/pinkeeper/internal/pinfile"
)

var _ = Describe("Splice", func() {
	const begin, end = "// BEGIN\n", "// END\n"

	It("replaces only the text strictly between the markers", func() {
		src := "head\n// BEGIN\nold\nblock\n// END\ntail\n"
		out, err := pinfile.Splice(src, begin, end, "new\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("head\n// BEGIN\nnew\n// END\ntail\n"))
	})

	It("is byte-identical when re-splicing the extracted block", func() {
		src := "a\r\n  // BEGIN\nweird \t spacing\n// END\n\x00trailer without newline"
		block, err := pinfile.Extract(src, begin, end)
		Expect(err).NotTo(HaveOccurred())
		out, err := pinfile.Splice(src, begin, end, block)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(src))
	})

	It("uses the first end marker after the begin marker", func() {
		src := "// END\n// BEGIN\nx\n// END\ny\n// END\n"
		out, err := pinfile.Splice(src, begin, end, "z\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("// END\n// BEGIN\nz\n// END\ny\n// END\n"))
	})

	It("fails with config corruption when the begin marker is missing", func() {
		_, err := pinfile.Splice("x\n// END\n", begin, end, "b")
		Expect(err).To(MatchError(pinfile.ErrConfigCorruption))
	})

	It("fails with config corruption when the end marker is missing", func() {
		_, err := pinfile.Splice("// BEGIN\nx\n", begin, end, "b")
		Expect(err).To(MatchError(pinfile.ErrConfigCorruption))
		_, err = pinfile.Extract("// BEGIN\nx\n", begin, end)
		Expect(err).To(MatchError(pinfile.ErrConfigCorruption))
	})

	It("requires exact marker lines", func() {
		_, err := pinfile.Extract("// BEGIN \nx\n// END\n", begin, end)
		Expect(err).To(MatchError(pinfile.ErrConfigCorruption))
	})
})
