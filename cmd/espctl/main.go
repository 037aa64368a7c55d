// espctl 离线解码 ESP 报文、回放语料、查看注册表
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
