package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "Bento Onigiri Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the Onigiri variant classification API!"
	SERVICE_DESCRIPTION ServiceInfo = "Onigiri ACMG/AMP variant classification service for a Bento platform node."

	SERVICE_ARTIFACT    ServiceInfo = "onigiri"
	SERVICE_VERSION     ServiceInfo = "0.0.1"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("ca.c3g.bento:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
