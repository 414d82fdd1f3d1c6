// Package constants provides shared constants for the property-finance application.
package constants

// DateTimeLayout is the month format accepted for lease and valuation dates.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// WeeksPerYear is used to convert void periods expressed in weeks
	WeeksPerYear = 52

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 penny)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Lender affordability defaults
const (
	// ICRBasicRate is the interest cover ratio demanded for basic-rate taxpayers and companies
	ICRBasicRate = 125.0

	// ICRHigherRate is the interest cover ratio demanded for higher-rate taxpayers
	ICRHigherRate = 145.0

	// StressRateFloor is the minimum stress rate lenders apply to buy-to-let loans
	StressRateFloor = 5.5

	// StressRateBuffer is added to the product rate when no stress rate is given
	StressRateBuffer = 2.0

	// MaxLoanTermYears is the longest mortgage term modelled
	MaxLoanTermYears = 40

	// MaxLoanTermMonths is MaxLoanTermYears in months
	MaxLoanTermMonths = MaxLoanTermYears * MonthsPerYear

	// MaxContractYears is the longest rent-to-rent contract modelled
	MaxContractYears = 99
)

// Lease extension defaults
const (
	// StatutoryExtensionYears is added to the unexpired term on a statutory lease extension
	StatutoryExtensionYears = 90

	// MarriageValueThresholdYears is the unexpired term at or above which marriage value is ignored
	MarriageValueThresholdYears = 80

	// DefaultDefermentRate is the Sportelli deferment rate for flats
	DefaultDefermentRate = 5.0

	// DefaultCapitalisationRate is the ground rent capitalisation rate
	DefaultCapitalisationRate = 7.0

	// DefaultMarriageValueShare is the freeholder's share of marriage value
	DefaultMarriageValueShare = 50.0

	// FreeholdUplift is the premium of freehold vacant possession value over a long lease
	FreeholdUplift = 1.01
)

// Property management thresholds
const (
	// Section20Threshold is the per-leaseholder cost of qualifying works requiring consultation
	Section20Threshold = 250.0

	// EPCCostCap is the spending cap for minimum energy efficiency upgrades
	EPCCostCap = 10000.0

	// HMOLicenceYears is the usual term of a mandatory HMO licence
	HMOLicenceYears = 5

	// DefaultDiscountRate is used to discount rent streams when none is supplied
	DefaultDiscountRate = 8.0

	// DefaultTargetProfitOnGDV is the developer margin used for residual land value
	DefaultTargetProfitOnGDV = 20.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default calculation request file name
	DefaultConfigFile = "request.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultRateLimitRequests is the number of analysis requests allowed per window
	DefaultRateLimitRequests = 10

	// DefaultAnalyzePath is the path of the AI analysis endpoint
	DefaultAnalyzePath = "/api/ai/analyze"
)
