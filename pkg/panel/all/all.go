// Package all registers every panel adapter with the panel registry.
//
//	import _ "github.com/rhuss/opexcore/pkg/panel/all"
package all

import (
	_ "github.com/rhuss/opexcore/pkg/panel/guard"
	_ "github.com/rhuss/opexcore/pkg/panel/marzban"
	_ "github.com/rhuss/opexcore/pkg/panel/marzneshin"
	_ "github.com/rhuss/opexcore/pkg/panel/ovpanel"
	_ "github.com/rhuss/opexcore/pkg/panel/pasarguard"
	_ "github.com/rhuss/opexcore/pkg/panel/remnawave"
	_ "github.com/rhuss/opexcore/pkg/panel/rustneshin"
)
