// Package rules provides the chess rules backends consumed by the engine.
package rules

import (
	"fmt"

	"github.com/kestrel-chess/kestrel/pkg/common"
)

const DefaultBackend = "dragontooth"

type Factory func(fen string) (common.Position, error)

var backends = map[string]Factory{
	"dragontooth": func(fen string) (common.Position, error) {
		var p, err = NewDragontooth(fen)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
	"notnil": func(fen string) (common.Position, error) {
		var p, err = NewNotnil(fen)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
}

func Get(name string) (Factory, error) {
	if name == "" {
		name = DefaultBackend
	}
	var f, ok = backends[name]
	if !ok {
		return nil, fmt.Errorf("bad rules backend %v", name)
	}
	return f, nil
}

func Names() []string {
	return []string{"dragontooth", "notnil"}
}
