// Command neuralforecaster fits forecasts with regularized event and holiday regressors from csv
// files and generates the synthetic datasets used to verify the regularization.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
