package restyutil

import (
	"fmt"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives the full text of every request/response pair.
type Output interface {
	Write(id string, contents string)
}

// DumpMessages writes every completed exchange made by client to output,
// `prefix` distinguishes clients sharing the same output.
// `output` can be nil, if it is, then the function is a no-op
func DumpMessages(client *resty.Client, prefix string, output Output) {
	if output == nil {
		return
	}
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(fmt.Sprintf("%s-%03d.txt", prefix, id), formatHttpMessage(res))
		return nil
	})
}
