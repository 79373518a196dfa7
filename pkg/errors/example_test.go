package errors_test

import (
	"errors"
	"fmt"

	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

// Example_customErrorTypes demonstrates custom error type handling
func Example_customErrorTypes() {
	dimErr := fcErrors.NewDimensionError("Transform", 5, 3, 1)
	wrappedErr := fmt.Errorf("preprocessing failed: %w", dimErr)

	var dimensionErr *fcErrors.DimensionError
	if errors.As(wrappedErr, &dimensionErr) {
		fmt.Printf("Dimension error: expected %d, got %d\n",
			dimensionErr.Expected, dimensionErr.Got)
	}

	// Output: Dimension error: expected 5, got 3
}

// Example_errorComparison demonstrates error comparison patterns
func Example_errorComparison() {
	notFittedErr := fcErrors.NewNotFittedError("LinearRegression", "Predict")
	valueErr := fcErrors.NewValueError("StandardScaler", "negative values not supported")

	var notFitted *fcErrors.NotFittedError
	if errors.As(notFittedErr, &notFitted) {
		fmt.Printf("Model %s is not fitted for %s\n",
			notFitted.ModelName, notFitted.Method)
	}

	var valErr *fcErrors.ValueError
	if errors.As(valueErr, &valErr) {
		fmt.Printf("Value error in %s: %s\n", valErr.Op, valErr.Message)
	}

	// Output: Model LinearRegression is not fitted for Predict
	// Value error in StandardScaler: negative values not supported
}

// Example_errorLogging demonstrates the message of a wrapped model error
func Example_errorLogging() {
	baseErr := fcErrors.NewModelError("PCA.Fit", "too few samples",
		fcErrors.ErrInsufficientData)
	opErr := fmt.Errorf("fitting petrol subset: %w", baseErr)

	fmt.Printf("Error: %v\n", opErr)

	// Output: Error: fitting petrol subset: fuelcast: PCA.Fit: too few samples: insufficient data
}

// Example_inputError shows how the prediction service classifies user input errors
func Example_inputError() {
	err := fcErrors.NewInputError(fcErrors.ErrMissingDistrict, "district", "Please select a district.", "Select district")

	var valErr *fcErrors.ValidationError
	if fcErrors.Is(err, fcErrors.ErrMissingDistrict) && fcErrors.As(err, &valErr) {
		fmt.Println(valErr.Message())
	}

	// Output: Please select a district.
}
