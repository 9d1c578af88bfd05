package k8s_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/imamik/mysqlset/internal/k8s"
)

var _ = Describe("RolloutStatus", func() {
	var sts *appsv1.StatefulSet

	BeforeEach(func() {
		sts = &appsv1.StatefulSet{
			ObjectMeta: metav1.ObjectMeta{Name: "mysql", Generation: 3},
			Spec: appsv1.StatefulSetSpec{
				Replicas:       ptr.To[int32](3),
				UpdateStrategy: appsv1.StatefulSetUpdateStrategy{Type: appsv1.RollingUpdateStatefulSetStrategyType},
			},
			Status: appsv1.StatefulSetStatus{
				ObservedGeneration: 3,
				ReadyReplicas:      3,
				CurrentReplicas:    3,
				UpdatedReplicas:    3,
				CurrentRevision:    "mysql-1",
				UpdateRevision:     "mysql-1",
			},
		}
	})

	It("reports a complete rollout", func() {
		msg, done, err := k8s.RolloutStatus(sts)
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeTrue())
		Expect(msg).To(Equal("statefulset rolling update complete 3 pods at revision mysql-1..."))
	})

	It("rejects the OnDelete strategy", func() {
		sts.Spec.UpdateStrategy.Type = appsv1.OnDeleteStatefulSetStrategyType
		_, _, err := k8s.RolloutStatus(sts)
		Expect(err).To(MatchError(ContainSubstring("only available for RollingUpdate")))
	})

	DescribeTable("waits for the spec to be observed",
		func(generation, observed int64) {
			sts.Generation = generation
			sts.Status.ObservedGeneration = observed
			msg, done, err := k8s.RolloutStatus(sts)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(msg).To(ContainSubstring("spec update to be observed"))
		},
		Entry("never observed", int64(1), int64(0)),
		Entry("stale observation", int64(4), int64(3)),
	)

	It("waits for pods to become ready", func() {
		sts.Status.ReadyReplicas = 1
		msg, done, err := k8s.RolloutStatus(sts)
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeFalse())
		Expect(msg).To(Equal("Waiting for 2 pods to be ready..."))
	})

	It("treats a scale-up as incomplete until the new ordinals are ready", func() {
		sts.Spec.Replicas = ptr.To[int32](5)
		msg, done, _ := k8s.RolloutStatus(sts)
		Expect(done).To(BeFalse())
		Expect(msg).To(Equal("Waiting for 2 pods to be ready..."))
	})

	Context("with a partition", func() {
		BeforeEach(func() {
			sts.Spec.UpdateStrategy.RollingUpdate = &appsv1.RollingUpdateStatefulSetStrategy{Partition: ptr.To[int32](2)}
			sts.Status.UpdateRevision = "mysql-2"
		})

		It("waits for pods above the partition to update", func() {
			sts.Status.UpdatedReplicas = 0
			msg, done, err := k8s.RolloutStatus(sts)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(msg).To(ContainSubstring("0 out of 1 new pods have been updated"))
		})

		It("completes once the partitioned pods are updated", func() {
			sts.Status.UpdatedReplicas = 1
			msg, done, err := k8s.RolloutStatus(sts)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(msg).To(HavePrefix("partitioned roll out complete"))
		})
	})

	Context("with the default partition of 0", func() {
		BeforeEach(func() {
			sts.Spec.UpdateStrategy.RollingUpdate = &appsv1.RollingUpdateStatefulSetStrategy{Partition: ptr.To[int32](0)}
		})

		It("waits while ready pods still run the old revision", func() {
			sts.Status.UpdatedReplicas = 0
			sts.Status.UpdateRevision = "mysql-2"
			msg, done, err := k8s.RolloutStatus(sts)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(msg).To(ContainSubstring("0 out of 3 new pods have been updated"))
		})

		It("waits for the revisions to converge after every pod is updated", func() {
			sts.Status.UpdateRevision = "mysql-2"
			msg, done, err := k8s.RolloutStatus(sts)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(msg).To(Equal("waiting for statefulset rolling update to complete 3 pods at revision mysql-2..."))
		})

		It("completes once the revisions match", func() {
			msg, done, err := k8s.RolloutStatus(sts)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(msg).To(Equal("statefulset rolling update complete 3 pods at revision mysql-1..."))
		})
	})

	It("waits for the revisions to converge", func() {
		sts.Status.UpdateRevision = "mysql-2"
		sts.Status.UpdatedReplicas = 1
		msg, done, err := k8s.RolloutStatus(sts)
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeFalse())
		Expect(msg).To(Equal("waiting for statefulset rolling update to complete 1 pods at revision mysql-2..."))
	})
})
