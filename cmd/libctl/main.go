// libctl 图书馆运维命令行：迁移、造数、清库、管理员、事件订阅
package main

import "github.com/xiebiao/library/cmd/libctl/command"

func main() {
	command.Execute()
}
