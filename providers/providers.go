// Package providers registers every share target provider with yt2ig.DefaultProviderRegistry when imported.
package providers

import (
	_ "github.com/yt2ig/yt2ig/provider/youtube"
)
