package marketModel

// RawQuotes is the wire shape shared by the three class price sources.
type RawQuotes struct {
	Quotes []RawQuote `json:"quotes"`
}

// RawQuote keeps Price untyped: sources have been seen returning numbers,
// numeric strings and nulls, and anything unparseable is discarded rather
// than treated as zero.
type RawQuote struct {
	Symbol string `json:"symbol"`
	Price  any    `json:"price"`
}
