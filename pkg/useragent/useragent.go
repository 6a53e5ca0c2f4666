package useragent

import (
	"fmt"
	"runtime"

	"github.com/docker/explainer/pkg/version"
)

var Header = fmt.Sprintf("Explainer/%s (%s; %s)", version.Version, runtime.GOOS, runtime.GOARCH)
