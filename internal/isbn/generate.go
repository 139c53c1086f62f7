package isbn

import (
	"fmt"
	"math/rand/v2"
)

// Registration groups assigned under the 978 and 979 prefixes. A generated
// ISBN is structurally valid even though the publisher and title elements
// are random, so it may not be assigned to any real title.
var (
	groups978 = buildGroups978()
	groups979 = []string{"8", "10", "11", "12"}
)

func buildGroups978() []string {
	var g []string
	add := func(lo, hi int) {
		for i := lo; i <= hi; i++ {
			g = append(g, fmt.Sprintf("%d", i))
		}
	}
	add(0, 5)
	add(600, 625)
	g = append(g, "65", "7")
	add(80, 94)
	add(950, 989)
	add(9917, 9989)
	add(99901, 99983)
	return g
}

// Generate returns a randomly generated, checksum-valid ISBN-13 drawn
// from assigned registration groups.
func Generate() string {
	var prefix, group string
	if rand.IntN(2) == 0 {
		prefix = "978"
		group = groups978[rand.IntN(len(groups978))]
	} else {
		prefix = "979"
		group = groups979[rand.IntN(len(groups979))]
	}
	pubLen := 2 + rand.IntN(9-len(group)-2)
	pub := zeroPadded(rand.IntN(pow10(pubLen)), pubLen)
	titLen := 9 - (len(group) + pubLen)
	tit := zeroPadded(rand.IntN(pow10(titLen)), titLen)
	body := prefix + group + pub + tit
	return body + string(checkDigit13(body))
}

// GenerateBogus returns a string that looks like an ISBN-13 but is not
// one: it carries a 978/979 prefix and thirteen characters, one of which
// is a letter O standing in for a zero.
func GenerateBogus() string {
	infix := []byte("43776156O")
	rand.Shuffle(len(infix), func(i, j int) {
		infix[i], infix[j] = infix[j], infix[i]
	})
	prefix := "978"
	if rand.IntN(2) == 1 {
		prefix = "979"
	}
	return prefix + string(infix) + fmt.Sprintf("%d", rand.IntN(10))
}

func zeroPadded(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func pow10(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
