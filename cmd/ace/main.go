// ace 机密资产引擎服务与运维工具
package main

func main() {
	Execute()
}
