package conv_test

import (
	"fmt"

	"github.com/cwbudde/ircab/dsp/conv"
)

func ExampleNewStreaming() {
	kernel := []float64{1, 0.5, 0.25}

	c, err := conv.NewStreaming(kernel, 2)
	if err != nil {
		fmt.Println(err)
		return
	}

	out := make([]float64, 2)
	for _, block := range [][]float64{{1, 0}, {0, 0}} {
		if err := c.ProcessBlockTo(out, block); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(out)
	}

	// Output:
	// [1 0.5]
	// [0.25 0]
}
