package ordersvc

// OrderConfig holds configuration parameters for the order service.
type OrderConfig struct {
	// TestdataYear is the calendar year generated test orders are placed in
	TestdataYear int `env:"TESTDATA_YEAR" default:"2024"`

	// TestdataMin and TestdataMax bound the number of test orders per customer
	TestdataMin int `env:"TESTDATA_MIN" default:"50"`
	TestdataMax int `env:"TESTDATA_MAX" default:"200"`
}
