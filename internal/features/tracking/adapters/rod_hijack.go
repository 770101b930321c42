package adapter

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockedResources are never needed to read the result text.
var blockedResources = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage: {},
	proto.NetworkResourceTypeFont:  {},
	proto.NetworkResourceTypeMedia: {},
}

func shouldBlock(resourceType proto.NetworkResourceType) bool {
	_, ok := blockedResources[resourceType]
	return ok
}

// blockResources installs a request interceptor that fails blocked resource
// types and lets everything else through. The caller must Stop the router.
func blockResources(page *rod.Page) (*rod.HijackRouter, error) {
	router := page.HijackRequests()

	err := router.Add("*", "", func(ctx *rod.Hijack) {
		if shouldBlock(ctx.Request.Type()) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, err
	}

	go router.Run()

	return router, nil
}
