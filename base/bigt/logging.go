package basebigt

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("cfstore", "github.com/streamingfast/cfstore/base/bigt")
