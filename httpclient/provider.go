package httpclient

import (
	"github.com/kbukum/sslpin/provider"
)

// compile-time assertions
var _ provider.RequestResponse[Request, *Response] = (*Transport)(nil)
var _ provider.Closeable = (*Transport)(nil)
