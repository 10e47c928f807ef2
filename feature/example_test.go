package feature_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vibration/feature"
)

func ExampleExtractor_Stack() {
	ex, err := feature.NewExtractor(feature.DefaultConfig())
	if err != nil {
		panic(err)
	}

	var axes [feature.Channels][]float64
	for ch := range axes {
		axes[ch] = make([]float64, 1024)
		for i := range axes[ch] {
			axes[ch][i] = math.Sin(2 * math.Pi * float64((ch+1)*100*i) / feature.DefaultSampleRate)
		}
	}

	tensor, err := ex.Stack(axes)
	if err != nil {
		panic(err)
	}

	fmt.Println(tensor.Shape())
	fmt.Println(len(tensor.CHW()))
	// Output:
	// [9 13 3]
	// 351
}
