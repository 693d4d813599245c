// Package readiness provides Kubernetes resource readiness polling.
//
// Every wait goes through [PollForReadiness], a thin binding of the shared
// poll primitive, so interval and timeout semantics stay uniform across the
// bootstrap flow.
//
// Key features:
//   - API server readiness and stability polling (WaitForAPIServerReady,
//     WaitForAPIServerStable)
//   - Node readiness polling (WaitForNodeReady, WaitForNodesReady)
//   - Deployment rollout polling (WaitForDeploymentReady,
//     WaitForDeploymentsReady)
//   - CRD establishment polling (WaitForCRDEstablished)
package readiness
